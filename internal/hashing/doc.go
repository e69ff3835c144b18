// Package hashing computes 64-bit perceptual hashes (pHash) for image
// files, consulting the cache store before decoding anything. Batch
// hashing fans decode work out across a bounded worker pool; all cache
// writes stay on the coordinating goroutine.
package hashing
