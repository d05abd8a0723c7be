package operand

import "github.com/pkg/errors"

// Cell is a single named slot inside a block holding one tagged value.
type Cell struct {
	Value Value
	Name  int
}

// Block is a resizable vector of cells. A cell's index is its position
// within the block and never moves during the block's lifetime.
type Block struct {
	Cells []Cell
}

func (b *Block) nextIndex() int { return len(b.Cells) }

// Frame is a per-function partition of the operand stack: a stack of
// blocks, block 0 being the function's entry block.
type Frame struct {
	Blocks []*Block
}

// Memory is the stack of operand frames described in §3. The top frame is
// always current.
type Memory struct {
	Frames []*Frame
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) PushFrame() {
	m.Frames = append(m.Frames, &Frame{Blocks: []*Block{{}}})
}

func (m *Memory) PopFrame() {
	m.Frames = m.Frames[:len(m.Frames)-1]
}

func (m *Memory) CurrentFrameIndex() int { return len(m.Frames) - 1 }

func (m *Memory) currentFrame() *Frame { return m.Frames[len(m.Frames)-1] }

func (m *Memory) PushBlock() int {
	f := m.currentFrame()
	f.Blocks = append(f.Blocks, &Block{})
	return len(f.Blocks) - 1
}

// PopBlock pops the current block wholesale; any cells it held are released.
func (m *Memory) PopBlock() {
	f := m.currentFrame()
	f.Blocks = f.Blocks[:len(f.Blocks)-1]
}

func (m *Memory) CurrentBlockIndex() int {
	return len(m.currentFrame().Blocks) - 1
}

func (m *Memory) block(frame, blk int) *Block {
	return m.Frames[frame].Blocks[blk]
}

// Alloc is idempotent: if the cell already exists it is left untouched; if
// index == len(cells) a new uninitialized cell is appended; any other index
// is a bounds error (invariant 3 of §3).
func (m *Memory) Alloc(frame, blk, index int, name int) error {
	b := m.block(frame, blk)
	if index < len(b.Cells) {
		return nil
	}
	if index == len(b.Cells) {
		b.Cells = append(b.Cells, Cell{Value: Uninitialized(), Name: name})
		return nil
	}
	return errors.Errorf("operand memory: alloc(%d,%d,%d) out of order, block has %d cells", frame, blk, index, len(b.Cells))
}

// Push always targets the top block of the top frame.
func (m *Memory) Push(v Value) {
	f := m.currentFrame()
	blk := f.Blocks[len(f.Blocks)-1]
	blk.Cells = append(blk.Cells, Cell{Value: v})
}

// Pop removes and returns the top cell's value of the current block.
func (m *Memory) Pop() Value {
	f := m.currentFrame()
	blk := f.Blocks[len(f.Blocks)-1]
	n := len(blk.Cells)
	v := blk.Cells[n-1].Value
	blk.Cells = blk.Cells[:n-1]
	return v
}

func (m *Memory) Depth() int {
	f := m.currentFrame()
	blk := f.Blocks[len(f.Blocks)-1]
	return len(blk.Cells)
}

// FetchLocal reads a copy of the cell at (current frame, blk, index)
// without popping it.
func (m *Memory) FetchLocal(blk, index int) Value {
	return m.block(m.CurrentFrameIndex(), blk).Cells[index].Value
}

func (m *Memory) FetchAt(frame, blk, index int) Value {
	return m.block(frame, blk).Cells[index].Value
}

// Update replaces the scalar at (current frame, blk, index) with v,
// preserving the destination cell's interner name.
func (m *Memory) Update(blk, index int, v Value) {
	b := m.block(m.CurrentFrameIndex(), blk)
	name := b.Cells[index].Name
	b.Cells[index] = Cell{Value: v, Name: name}
}

func (m *Memory) UpdateAt(frame, blk, index int, v Value) {
	b := m.block(frame, blk)
	name := b.Cells[index].Name
	b.Cells[index] = Cell{Value: v, Name: name}
}

// Deref follows a reference chain to the first non-reference cell. The
// generator never emits references-to-references, so one step suffices,
// but this loops defensively.
func (m *Memory) Deref(v Value) Value {
	for v.Kind == KindRef {
		v = m.FetchAt(v.Ref.Frame, v.Ref.Block, v.Ref.Index)
	}
	return v
}

// DerefTOS pops the top of the current block and dereferences it.
func (m *Memory) DerefTOS() Value {
	return m.Deref(m.Pop())
}

// WriteThroughRef updates the cell addressed by a reference value in place.
func (m *Memory) WriteThroughRef(ref Ref, v Value) {
	m.UpdateAt(ref.Frame, ref.Block, ref.Index, v)
}
