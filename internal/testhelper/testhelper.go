// Package testhelper contains helpers to simplify tests
package testhelper

import (
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDir creates a temp dir and returns a cleanup method
func TempDir(t *testing.T) (out string, cleanup func()) {
	out, err := ioutil.TempDir("", strings.ReplaceAll(t.Name(), "/", "_")+"_")
	require.NoError(t, err)

	cleanup = func() {
		// for debug purpose we keep everything if the test failed
		if !t.Failed() {
			require.NoError(t, os.RemoveAll(out))
		}
	}
	return out, cleanup
}

// StringValue is a pflag.Value implementation that always reports the
// wrapped string, regardless of what gets passed to Set()
type StringValue struct {
	Value string
}

// String returns the wrapped value
func (v *StringValue) String() string {
	return v.Value
}

// Set overrides the wrapped value
func (v *StringValue) Set(s string) error {
	v.Value = s
	return nil
}

// Type returns the flag's type name
func (v *StringValue) Type() string {
	return "string"
}

// TempFile creates a temp file and returns a cleanup method
func TempFile(t *testing.T) (f *os.File, cleanup func()) {
	f, err := ioutil.TempFile("", strings.ReplaceAll(t.Name(), "/", "_")+"_")
	require.NoError(t, err)

	cleanup = func() {
		require.NoError(t, os.Remove(f.Name()))
	}
	return f, cleanup
}
