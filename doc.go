// Package vmanage is a client library for the Cisco Catalyst SD-WAN
// (vManage) management API.
//
// The client authenticates once with the controller's form-based login,
// captures the session cookie and CSRF token, and reuses that single session
// for every subsequent read. Inventory reads that span several endpoints fan
// out concurrently with a configurable in-flight cap so large overlays can be
// collected quickly without overwhelming the controller.
//
// Basic usage:
//
//	client, err := vmanage.New(ctx, "vmanage.example.com", "admin", "secret")
//	if err != nil {
//		log.Fatal(err) // controller unreachable
//	}
//	if !client.Connected() {
//		log.Fatal("login rejected") // bad credentials: accessors return nothing
//	}
//
//	devices, err := client.GetDevices(ctx)
//
// A client whose login was rejected is still usable: every accessor
// short-circuits to an absent result instead of returning an error. Only
// transport-level failures (DNS, TLS, connection reset) surface as errors.
package vmanage
