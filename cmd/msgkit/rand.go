package main

import (
	"crypto/rand"
	"io"
	mathrand "math/rand"
)

type cryptoRandReader struct{}

func (cryptoRandReader) Read(p []byte) (int, error) { return rand.Read(p) }

func newSeededReader(seed int64) io.Reader {
	return mathrand.New(mathrand.NewSource(seed))
}
