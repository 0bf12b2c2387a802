package cli

//
// run_test.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/kabes/go-trss/internal/aerr"
	"gitlab.com/kabes/go-trss/internal/assert"
)

func TestAcquireRunLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	lock, err := acquireRunLock(path)
	assert.NoErr(t, err)

	// a second invocation while the lock is held fails fast
	_, err = acquireRunLock(path)
	assert.Err(t, err)
	assert.True(t, strings.Contains(aerr.GetUserMessage(err), "another go-trss run holds the lock"))

	assert.NoErr(t, lock.Unlock())

	// released lock can be taken again
	lock2, err := acquireRunLock(path)
	assert.NoErr(t, err)
	assert.NoErr(t, lock2.Unlock())
}
