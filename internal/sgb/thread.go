package sgb

import (
	"sort"

	"sgb-go/internal/model"
)

// ReplyNode is a reply with the replies that name it as their parent.
type ReplyNode struct {
	Reply    model.Reply
	Children []ReplyNode
}

// GroupReplies arranges a comment's flat reply list into a display tree.
// A reply whose ParentReplyID names a sibling is placed under that sibling.
// Replies with no parent, or whose parent cannot be found, sit directly
// under the comment. Input order is preserved among siblings.
func GroupReplies(c model.Comment) []ReplyNode {
	byID := make(map[string]bool, len(c.Replies))
	for _, r := range c.Replies {
		byID[r.ID] = true
	}

	children := make(map[string][]model.Reply)
	var roots []model.Reply
	for _, r := range c.Replies {
		if r.ParentReplyID == "" || r.ParentReplyID == r.ID || !byID[r.ParentReplyID] {
			roots = append(roots, r)
			continue
		}
		children[r.ParentReplyID] = append(children[r.ParentReplyID], r)
	}

	visited := make(map[string]bool, len(c.Replies))
	var build func(r model.Reply) ReplyNode
	build = func(r model.Reply) ReplyNode {
		visited[r.ID] = true
		node := ReplyNode{Reply: r}
		for _, child := range children[r.ID] {
			if visited[child.ID] {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	nodes := make([]ReplyNode, 0, len(roots))
	for _, r := range roots {
		nodes = append(nodes, build(r))
	}

	// Parent cycles in stored data leave replies unreachable from any root.
	for _, r := range c.Replies {
		if !visited[r.ID] {
			nodes = append(nodes, build(r))
		}
	}
	return nodes
}

// SortCommentsNewestFirst returns a copy of comments ordered by CreatedAt descending.
func SortCommentsNewestFirst(comments []model.Comment) []model.Comment {
	out := make([]model.Comment, len(comments))
	copy(out, comments)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// CountReplies returns the number of replies across all comments.
func CountReplies(comments []model.Comment) int {
	n := 0
	for _, c := range comments {
		n += len(c.Replies)
	}
	return n
}
