// Package ranking 实现标准竞赛排名（"1224" 排名法）
package ranking

import "sort"

// Ranked 排名结果；Rank 为 nil 表示无分数、不参与排名
type Ranked[T any] struct {
	Item T
	Rank *int
}

// Rank 按分数降序稳定排序并计算排名
//
// rank = 1 + 严格高于自身的条目数，同分同名次，后续名次跳过被占用的位置。
// 分数为 nil 的条目排在最后、不给名次，彼此保持输入顺序。
func Rank[T any](items []T, score func(T) *float64) []Ranked[T] {
	out := make([]Ranked[T], len(items))
	for i, it := range items {
		out[i] = Ranked[T]{Item: it}
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := score(out[i].Item), score(out[j].Item)
		switch {
		case si == nil:
			return false
		case sj == nil:
			return true
		default:
			return *si > *sj
		}
	})

	// 已按降序排列：名次只在分数变化时更新为当前位置 + 1
	var prev *float64
	rank := 0
	for i := range out {
		s := score(out[i].Item)
		if s == nil {
			break
		}
		if prev == nil || *s != *prev {
			rank = i + 1
			prev = s
		}
		r := rank
		out[i].Rank = &r
	}
	return out
}
