// Package history keeps the ordered node log of a chat session and decides
// which nodes are sent to the model as context.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/erossel/convo/content"
	"github.com/erossel/convo/core"
)

// Node is one logged message. Only the Active flag mutates after creation;
// everything else is fixed until the node is removed.
type Node struct {
	ID        int            `json:"id"`
	Role      core.Role      `json:"role"`
	Content   []content.Part `json:"content"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"created_at"`
}

// Message projects the node into the wire message shape.
func (n Node) Message() core.Message {
	return core.Message{Role: n.Role, Parts: n.Content}
}

func (n Node) clone() Node {
	parts := make([]content.Part, len(n.Content))
	copy(parts, n.Content)
	n.Content = parts
	return n
}

// Row is the flat projection of a node for tabular inspection.
type Row struct {
	ID        int       `json:"id"`
	Role      core.Role `json:"role"`
	Active    bool      `json:"active"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// Log is an append-only ordered sequence of nodes. Ids increase strictly by
// one and are never reused, even after removal. There is no automatic
// eviction; pruning the context window happens via SetActive/Toggle only.
type Log struct {
	nodes  []Node
	nextID int
}

func New() *Log {
	return &Log{}
}

// Restore rebuilds a log from persisted nodes. It rejects duplicate ids and
// unknown roles, and keeps nextID past both the highest id seen and the
// persisted counter, so removed ids stay retired.
func Restore(nodes []Node, nextID int) (*Log, error) {
	log := New()
	seen := make(map[int]struct{}, len(nodes))

	for _, node := range nodes {
		if _, ok := seen[node.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate node id %d", core.ErrInvalidSnapshot, node.ID)
		}
		seen[node.ID] = struct{}{}

		if !node.Role.Valid() {
			return nil, fmt.Errorf("%w: node %d has unknown role %q", core.ErrInvalidSnapshot, node.ID, node.Role)
		}

		for _, part := range node.Content {
			if err := part.Validate(); err != nil {
				return nil, fmt.Errorf("%w: node %d: %v", core.ErrInvalidSnapshot, node.ID, err)
			}
		}

		log.nodes = append(log.nodes, node.clone())

		if node.ID >= log.nextID {
			log.nextID = node.ID + 1
		}
	}

	if nextID > log.nextID {
		log.nextID = nextID
	}

	return log, nil
}

// Append adds a new active node and returns its id.
func (l *Log) Append(role core.Role, parts []content.Part) int {
	id := l.nextID
	l.nextID++

	node := Node{
		ID:        id,
		Role:      role,
		Content:   append([]content.Part(nil), parts...),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	l.nodes = append(l.nodes, node)

	return id
}

// SetSystem appends a new system node and deactivates any previously active
// system node, keeping at most one system node active at a time.
func (l *Log) SetSystem(parts []content.Part) int {
	for i := range l.nodes {
		if l.nodes[i].Role == core.RoleSystem {
			l.nodes[i].Active = false
		}
	}

	return l.Append(core.RoleSystem, parts)
}

// SetActive sets the active flag of the node with the given id. Activating a
// system node deactivates every other system node. Idempotent when the flag
// already has the requested value.
func (l *Log) SetActive(id int, active bool) error {
	index := l.indexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: id %d", core.ErrNodeNotFound, id)
	}

	if active && l.nodes[index].Role == core.RoleSystem {
		for i := range l.nodes {
			if l.nodes[i].Role == core.RoleSystem {
				l.nodes[i].Active = false
			}
		}
	}

	l.nodes[index].Active = active

	return nil
}

// Toggle inverts the active flag of the node and returns the new state.
func (l *Log) Toggle(id int) (bool, error) {
	index := l.indexOf(id)
	if index < 0 {
		return false, fmt.Errorf("%w: id %d", core.ErrNodeNotFound, id)
	}

	target := !l.nodes[index].Active
	if err := l.SetActive(id, target); err != nil {
		return false, err
	}

	return target, nil
}

// Remove deletes the node with the given id. Its id is never handed out
// again.
func (l *Log) Remove(id int) error {
	index := l.indexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: id %d", core.ErrNodeNotFound, id)
	}

	l.nodes = append(l.nodes[:index], l.nodes[index+1:]...)

	return nil
}

// Deactivate turns off every node without deleting anything. The currently
// active system node is spared unless includeSystem is set.
func (l *Log) Deactivate(includeSystem bool) {
	for i := range l.nodes {
		if l.nodes[i].Role == core.RoleSystem && !includeSystem {
			continue
		}
		l.nodes[i].Active = false
	}
}

// Get returns a copy of the node with the given id.
func (l *Log) Get(id int) (Node, bool) {
	index := l.indexOf(id)
	if index < 0 {
		return Node{}, false
	}
	return l.nodes[index].clone(), true
}

// Nodes returns a copy of all nodes in insertion order.
func (l *Log) Nodes() []Node {
	nodes := make([]Node, 0, len(l.nodes))
	for _, node := range l.nodes {
		nodes = append(nodes, node.clone())
	}
	return nodes
}

// Active returns the active nodes in insertion order. This ordering is what
// gets sent to the model as conversation context.
func (l *Log) Active() []Node {
	var nodes []Node
	for _, node := range l.nodes {
		if node.Active {
			nodes = append(nodes, node.clone())
		}
	}
	return nodes
}

// ActiveIDs returns the ids of the active nodes in insertion order.
func (l *Log) ActiveIDs() []int {
	var ids []int
	for _, node := range l.nodes {
		if node.Active {
			ids = append(ids, node.ID)
		}
	}
	return ids
}

// Messages projects the active nodes into the wire message list.
func (l *Log) Messages() []core.Message {
	var messages []core.Message
	for _, node := range l.nodes {
		if node.Active {
			messages = append(messages, node.Message())
		}
	}
	return messages
}

func (l *Log) Len() int {
	return len(l.nodes)
}

func (l *Log) ActiveLen() int {
	count := 0
	for _, node := range l.nodes {
		if node.Active {
			count++
		}
	}
	return count
}

// NextID returns the next id that Append would assign.
func (l *Log) NextID() int {
	return l.nextID
}

// Clone returns a fully independent deep copy of the log.
func (l *Log) Clone() *Log {
	return &Log{nodes: l.Nodes(), nextID: l.nextID}
}

// Rows returns one flat record per node for external tabular tools.
func (l *Log) Rows() []Row {
	rows := make([]Row, 0, len(l.nodes))
	for _, node := range l.nodes {
		rows = append(rows, Row{
			ID:        node.ID,
			Role:      node.Role,
			Active:    node.Active,
			Summary:   summarize(node.Content),
			CreatedAt: node.CreatedAt,
		})
	}
	return rows
}

func (l *Log) indexOf(id int) int {
	for i, node := range l.nodes {
		if node.ID == id {
			return i
		}
	}
	return -1
}

func summarize(parts []content.Part) string {
	summaries := make([]string, 0, len(parts))
	for _, part := range parts {
		summaries = append(summaries, part.Summary())
	}
	return strings.Join(summaries, " ")
}
