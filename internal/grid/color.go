package grid

import "strings"

// GenericVariants 通用科目的调色板大小
const GenericVariants = 5

const genericPrefix = "generic-"

// 按顺序匹配，命中第一个即返回
var subjectCategories = []struct {
	keyword  string
	category string
}{
	{"信息科技", "info"},
	{"数学", "math"},
	{"语文", "chinese"},
	{"英语", "english"},
	{"科学", "science"},
	{"美术", "art"},
	{"体育", "pe"},
	{"音乐", "music"},
}

// SubjectCategory 按课程名关键字匹配科目类别
func SubjectCategory(courseName string) (string, bool) {
	for _, s := range subjectCategories {
		if strings.Contains(courseName, s.keyword) {
			return s.category, true
		}
	}
	return "", false
}

// GenericCategory 由稳定 ID 选出 generic-1..generic-5
func GenericCategory(id string) string {
	return genericName(int(stringHash(id) % GenericVariants))
}

// AssignColor 为课程分配展示类别；id 为空时走最少使用策略
func AssignColor(courseName, id string, rendered []string) string {
	if c, ok := SubjectCategory(courseName); ok {
		return c
	}
	if id != "" {
		return GenericCategory(id)
	}
	return LeastUsedGeneric(rendered)
}

// LeastUsedGeneric 统计已渲染的 generic 变体，返回使用次数最少的一个（并列取编号最小）
func LeastUsedGeneric(rendered []string) string {
	var counts [GenericVariants]int
	for _, c := range rendered {
		if i, ok := genericIndex(c); ok {
			counts[i]++
		}
	}
	best := 0
	for i := 1; i < GenericVariants; i++ {
		if counts[i] < counts[best] {
			best = i
		}
	}
	return genericName(best)
}

// Palette 渲染过程中的颜色分配器，记录已分配的类别
type Palette struct {
	rendered []string
}

// Assign 分配并记录
func (p *Palette) Assign(courseName, id string) string {
	c := AssignColor(courseName, id, p.rendered)
	p.rendered = append(p.rendered, c)
	return c
}

// stringHash 多项式滚动哈希 h = h*31 + c，跨进程稳定
func stringHash(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = h*31 + uint32(r)
	}
	return h
}

func genericName(i int) string {
	return genericPrefix + string(rune('1'+i))
}

func genericIndex(category string) (int, bool) {
	if !strings.HasPrefix(category, genericPrefix) || len(category) != len(genericPrefix)+1 {
		return 0, false
	}
	i := int(category[len(genericPrefix)] - '1')
	if i < 0 || i >= GenericVariants {
		return 0, false
	}
	return i, true
}
