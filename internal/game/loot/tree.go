// Package loot implements weighted loot trees and drop generation.
// Дерево сэмплируется походом от корня: на каждом Branch равномерный
// розыгрыш по суммарному весу детей, Leaf завершает проход и возвращает
// ссылку на шаблон предмета.
package loot

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var ErrEmptyLootPool = errors.New("loot branch has zero total weight")

// Node — узел loot-дерева. Leaf (Children == nil) несёт ссылку на шаблон,
// Branch — упорядоченный список детей. Вес неотрицателен; Branch с нулевым
// суммарным весом детей никогда не выбирается (сам считается весом 0).
type Node struct {
	Weight     int32
	TemplateID int32   // только для Leaf
	Children   []*Node // nil для Leaf
}

// Leaf создаёт лист с весом weight.
func Leaf(templateID int32, weight int32) *Node {
	return &Node{Weight: weight, TemplateID: templateID}
}

// Branch создаёт ветку с весом weight и детьми children.
func Branch(weight int32, children ...*Node) *Node {
	return &Node{Weight: weight, Children: children}
}

// IsLeaf возвращает true для листа.
func (n *Node) IsLeaf() bool {
	return n.Children == nil
}

// effectiveWeight — вес узла при розыгрыше родителя.
// Ветка без шансов внутри исключается целиком.
func (n *Node) effectiveWeight() int64 {
	if n.IsLeaf() {
		return int64(n.Weight)
	}
	if n.childTotal() == 0 {
		return 0
	}
	return int64(n.Weight)
}

// childTotal — суммарный эффективный вес детей.
func (n *Node) childTotal() int64 {
	var total int64
	for _, c := range n.Children {
		total += c.effectiveWeight()
	}
	return total
}

// Tree — провалидированное loot-дерево.
type Tree struct {
	root *Node
}

// NewTree валидирует структуру и создаёт дерево.
// Нулевой суммарный вес — не ошибка построения (дерево может собираться
// инкрементально), но Sample на таком дереве вернёт ErrEmptyLootPool.
func NewTree(root *Node) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("loot tree root cannot be nil")
	}
	if err := validateNode(root, 0); err != nil {
		return nil, err
	}
	return &Tree{root: root}, nil
}

func validateNode(n *Node, depth int) error {
	if n.Weight < 0 {
		return fmt.Errorf("loot node at depth %d: negative weight %d", depth, n.Weight)
	}
	if n.IsLeaf() {
		if n.TemplateID <= 0 {
			return fmt.Errorf("loot leaf at depth %d: template id must be > 0, got %d", depth, n.TemplateID)
		}
		return nil
	}
	for _, c := range n.Children {
		if c == nil {
			return fmt.Errorf("loot branch at depth %d: nil child", depth)
		}
		if err := validateNode(c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Root возвращает корень дерева (для обхода при валидации ссылок).
func (t *Tree) Root() *Node {
	return t.root
}

// Sample разыгрывает одну ссылку на шаблон предмета.
// RNG передаёт вызывающий: при фиксированном seed результаты
// воспроизводимы, ядро генератор не владеет и не сидирует.
//
// Returns:
//   - int32: template ID выпавшего листа
//   - error: ErrEmptyLootPool если проход упёрся в ветку с нулевым
//     суммарным весом (распространяется вызывающему, паники нет)
func (t *Tree) Sample(rng *rand.Rand) (int32, error) {
	node := t.root
	for !node.IsLeaf() {
		total := node.childTotal()
		if total == 0 {
			return 0, ErrEmptyLootPool
		}
		draw := rng.Int64N(total)
		var accum int64
		for _, c := range node.Children {
			accum += c.effectiveWeight()
			if draw < accum {
				node = c
				break
			}
		}
	}
	return node.TemplateID, nil
}

// SampleN разыгрывает n независимых ссылок (с возвращением).
func (t *Tree) SampleN(rng *rand.Rand, n int) ([]int32, error) {
	out := make([]int32, 0, n)
	for range n {
		id, err := t.Sample(rng)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Leaves возвращает template ID всех листьев дерева (для валидации ссылок
// загрузчиком данных).
func (t *Tree) Leaves() []int32 {
	var out []int32
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			out = append(out, n.TemplateID)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.root)
	return out
}
