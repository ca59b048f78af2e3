package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific
// binding on a BindGroupProvider at a given byte offset. Uniform uploads are
// staged as BufferWrites so a frame's writes land in one queue batch.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
