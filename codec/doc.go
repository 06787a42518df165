// Package codec compresses and decompresses buffer lists with snappy, zstd,
// gzip and lz4 framing. Compressed output is appended to the destination
// list page by page, so neither side is ever flattened.
package codec
