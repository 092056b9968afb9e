package output

import (
	"github.com/mj1618/uia-provider/internal/journal"
	"github.com/mj1618/uia-provider/internal/model"
)

// ActionResult is the output of commands that only report acceptance.
type ActionResult struct {
	OK     bool   `yaml:"ok"               json:"ok"`
	Action string `yaml:"action"           json:"action"`
	X      int    `yaml:"x,omitempty"      json:"x,omitempty"`
	Y      int    `yaml:"y,omitempty"      json:"y,omitempty"`
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
	Path   string `yaml:"path,omitempty"   json:"path,omitempty"`
}

// HierarchyResult is the output of the `hierarchy` command.
type HierarchyResult struct {
	Activity string      `yaml:"activity,omitempty" json:"activity,omitempty"`
	TS       int64       `yaml:"ts"                 json:"ts"`
	Count    int         `yaml:"count"              json:"count"`
	Root     *model.Node `yaml:"root"               json:"root"`
}

// HierarchyFlatResult is the output of `hierarchy --flat`.
type HierarchyFlatResult struct {
	Activity string           `yaml:"activity,omitempty" json:"activity,omitempty"`
	TS       int64            `yaml:"ts"                 json:"ts"`
	Nodes    []model.FlatNode `yaml:"nodes"              json:"nodes"`
}

// StatusResult is the output of the `status` command.
type StatusResult struct {
	Addr     string `yaml:"addr,omitempty"     json:"addr,omitempty"`
	Enabled  bool   `yaml:"enabled"            json:"enabled"`
	Activity string `yaml:"activity,omitempty" json:"activity,omitempty"`
}

// FocusedResult is the output of the `focused` command.
type FocusedResult struct {
	Found  bool   `yaml:"found"            json:"found"`
	NodeID string `yaml:"node_id,omitempty" json:"nodeId,omitempty"`
}

// HistoryResult is the output of the `history` command.
type HistoryResult struct {
	Journal string          `yaml:"journal" json:"journal"`
	Calls   []journal.Entry `yaml:"calls"   json:"calls"`
}
