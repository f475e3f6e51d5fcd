// Package io reads and writes graph definitions and parameter presets.
//
// # Overview
//
// A [dag.Definition] is plain data: nodes, the primary chain, exposed
// parameters, redirects and an optional mode switch. This package moves
// definitions between that struct and three file formats:
//
//   - TOML (read and write), the native format
//   - HCL (read only), for hand-written definitions with blocks
//   - JSON (read and write), for tooling and the HTTP API
//
// The format is picked from the file extension by [FormatFromPath].
//
// # TOML
//
//	name  = "soften"
//	chain = ["input", "blur", "output"]
//
//	[[nodes]]
//	id   = "blur"
//	kind = "gaussian-blur"
//
//	[[params]]
//	name    = "amount"
//	type    = "real"
//	default = 1.5
//	range   = { min = 0.0, max = 10.0 }
//
//	[[redirects]]
//	param = "amount"
//	node  = "blur"
//	key   = "std-dev-x"
//
// # HCL
//
// The same definition as HCL uses labelled blocks:
//
//	name  = "soften"
//	chain = ["input", "blur", "output"]
//
//	node "blur" {
//	  kind   = "gaussian-blur"
//	  params = { "std-dev-y" = 1.0 }
//	}
//
//	param "amount" {
//	  type    = "real"
//	  default = 1.5
//	  range   = [0, 10]
//	}
//
//	redirect {
//	  param = "amount"
//	  node  = "blur"
//	  key   = "std-dev-x"
//	}
//
//	mode {
//	  param      = "blendmode"
//	  slot       = "blend"
//	  aux_source = "tint"
//	  alternative "hardlight" { node = "hard-light" }
//	}
//
// # Numbers
//
// Whole numbers decode as int and everything else as float64, whichever
// format they came from. TOML yields int64 and JSON yields float64 by
// default; both are normalized so a definition compares equal after a round
// trip through any format.
//
// # Presets
//
// A preset is a set of exposed parameter values, optionally tagged with the
// effect it was made for:
//
//	effect = "cartoon"
//
//	[params]
//	blendmode = "multiply"
//	sat       = 2.0
//
// Use [ImportPreset] and [ExportPreset] for files, [ReadPreset] and
// [WritePreset] for streams.
//
// # Errors
//
// Malformed input and unknown keys are reported as INVALID_FORMAT errors
// from [github.com/matzehuels/metagraph/pkg/errors]. Reading a definition
// does not build it; call [dag.Build] to check the topology.
package io
