// Package api handles incoming HTTP requests, request decoding and response
// formatting. It adapts the auth and task services to the JSON API consumed
// by the task list frontend.
package api
