// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the HTTP endpoints of the voting API.

Handlers translate between HTTP and the domain packages: requests are
decoded and validated, the store/gateway/tally calls do the work, and
domain errors map to status codes. Notably a duplicate ballot is 409 with
kind "already_voted", and a submission whose outcome is unknown is 503
with kind "storage_unavailable" so clients know to check has-voted before
retrying.

StreamResults serves tally updates over server-sent events, one "tally"
event per accepted ballot, best-effort.
*/
package handlers
