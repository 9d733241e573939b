package encryption

import "sync"

// baseBufferPool is a shared chunk buffer pool for stream processing
var baseBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, DefaultChunkSize)
		return &buf
	},
}

// GetCipherBuffer gets a buffer of at least size bytes from the pool
func GetCipherBuffer(size int) *[]byte {
	bufPtr := baseBufferPool.Get().(*[]byte)
	if cap(*bufPtr) < size {
		buf := make([]byte, size)
		return &buf
	}
	*bufPtr = (*bufPtr)[:size]
	return bufPtr
}

// PutCipherBuffer returns a buffer to the pool
func PutCipherBuffer(buf *[]byte) {
	baseBufferPool.Put(buf)
}

// CipherTransformer defines the transform function applied to each chunk
type CipherTransformer interface {
	Transform(data []byte)
}
