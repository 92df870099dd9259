package grid

// SnakeIterator 蛇形遍历迭代器
//
// 偶数行列号递增，奇数行列号递减，每行结束后向下一行。
type SnakeIterator struct {
	size    Size
	current int
}

// NewSnakeIterator 创建蛇形迭代器
func NewSnakeIterator(size Size) *SnakeIterator {
	return &SnakeIterator{size: size}
}

// Next 返回下一个格子，遍历完毕返回 false
func (g *SnakeIterator) Next() (Position, bool) {
	if g.size.Cols <= 0 || g.current >= g.size.Cells() {
		return Position{}, false
	}

	row := g.current / g.size.Cols
	col := g.current % g.size.Cols
	if row%2 == 1 {
		col = g.size.Cols - 1 - col
	}
	g.current++

	return Position{Row: row, Col: col}, true
}

// Reset 重置迭代器
func (g *SnakeIterator) Reset() {
	g.current = 0
}

// Count 返回总格子数
func (g *SnakeIterator) Count() int {
	return g.size.Cells()
}

// SnakeOrder 返回完整的蛇形访问顺序
func SnakeOrder(size Size) []Position {
	it := NewSnakeIterator(size)
	order := make([]Position, 0, it.Count())
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		order = append(order, p)
	}
	return order
}

// NextMove 返回从 p 前往蛇形顺序下一个格子的方向，p 为最后一个格子时返回 false
func NextMove(size Size, p Position) (Direction, bool) {
	forward := p.Row%2 == 0
	switch {
	case forward && p.Col < size.Cols-1:
		return Right, true
	case !forward && p.Col > 0:
		return Left, true
	case p.Row < size.Rows-1:
		return Down, true
	default:
		return 0, false
	}
}
