// SPDX-License-Identifier: MPL-2.0

// Package testutil holds test helpers that fail the test instead of
// returning errors: working directory and environment switches that return
// a restore function, fixture trees (WriteTree) and go-git fixture
// repositories (InitRepo, StageFiles, Commit).
package testutil
