// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package router wires HTTP routes to their handlers. Management routes
// require the admin role, voting routes require a valid token, and reads
// are public. Routing uses method-qualified ServeMux patterns.
package router
