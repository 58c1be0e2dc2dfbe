// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// The parsing flow is:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to a Go value
//
// # Usage
//
//	//go:embed config_schema.cue
//	var configSchema string
//
//	result, err := cueutil.ParseAndDecodeString[map[string]any](
//	    configSchema,
//	    userFileBytes,
//	    "#Config",
//	    cueutil.WithFilename("modhook.cue"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes CUE path for debugging
//	}
//	return *result.Value, nil
package cueutil
