// Package hcl is the HCL implementation of config.Loader. It reads task and
// webhook manifests written as `task "<name>" { ... }` and
// `hook "<id>" { ... }` blocks and translates them into the
// format-agnostic config.Model.
//
// A task manifest looks like:
//
//	task "http_request" {
//	  description = "Performs an HTTP request."
//	  service     = "local"
//	  tags        = ["net", "http"]
//	  timeout     = "15s"
//
//	  input "url" {
//	    type = string
//	  }
//	  input "method" {
//	    type    = string
//	    default = "GET"
//	  }
//	  output "status_code" {
//	    type = number
//	  }
//	}
//
// Input and output types use the HCL type constraint syntax (string,
// number, bool, any, list(T), map(T), set(T), object({...}), tuple([...])).
package hcl
