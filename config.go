package rowz

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Operator type names used in configuration.
const (
	TypeDeleteItems = "deleteItems"
	TypeSplitItem   = "splitItem"
	TypeSplitItemN  = "splitItemN"
	TypeAddItem     = "addItem"
)

// Splitter and add spec names used in configuration.
const (
	SplitterSeparatorChar = "separatorChar"
	SplitterPattern       = "pattern"

	AddStatic  = "static"
	AddMeta    = "meta"
	AddRuntime = "runtime"

	RuntimeCurrentDateTimeUTC = "CurrentDateTimeUTC"
)

// Config is the declarative form of a Pipeline.
//
//	{
//	  "passes": [{
//	    "comment": "split amount",
//	    "transformers": [
//	      {"type": "splitItem", "cfg": {
//	        "idx": 0, "spec": {"name": "separatorChar", "char": " "},
//	        "deleteAfterSplit": true,
//	        "targetLeft": {"idx": 1, "header": "amount", "targetType": "Float32"},
//	        "targetRight": {"idx": 2, "header": "currency", "targetType": "String"}}}
//	    ],
//	    "orderItems": [{"from": 1, "to": 0}, {"from": 2, "to": 1}]
//	  }]
//	}
type Config struct {
	Version string       `json:"version,omitempty" yaml:"version,omitempty"`
	Passes  []PassConfig `json:"passes" yaml:"passes"`
}

// PassConfig describes one pass. A nil OrderItems means no order step.
type PassConfig struct {
	Comment      string           `json:"comment,omitempty" yaml:"comment,omitempty"`
	Transformers []OperatorConfig `json:"transformers" yaml:"transformers"`
	OrderItems   []OrderItem      `json:"orderItems,omitempty" yaml:"orderItems,omitempty"`
}

// OrderItem is one reindex step of a pass's order list.
type OrderItem struct {
	From uint `json:"from" yaml:"from"`
	To   uint `json:"to" yaml:"to"`
}

// OperatorConfig is a tagged union keyed by Type. Exactly one of the cfg
// fields is set after decoding a known type.
type OperatorConfig struct {
	Split  *SplitItemConfig  `json:"-" yaml:"-"`
	SplitN *SplitItemNConfig `json:"-" yaml:"-"`
	Add    *AddItemConfig    `json:"-" yaml:"-"`
	Type   string            `json:"-" yaml:"-"`
	Delete []uint            `json:"-" yaml:"-"`
}

// SplitItemConfig configures a pair split.
type SplitItemConfig struct {
	Spec             SplitterSpec `json:"spec" yaml:"spec"`
	TargetLeft       TargetConfig `json:"targetLeft" yaml:"targetLeft"`
	TargetRight      TargetConfig `json:"targetRight" yaml:"targetRight"`
	Idx              uint         `json:"idx" yaml:"idx"`
	DeleteAfterSplit bool         `json:"deleteAfterSplit" yaml:"deleteAfterSplit"`
}

// SplitItemNConfig configures an N-way split. Only separatorChar specs are
// accepted.
type SplitItemNConfig struct {
	Spec             SplitterSpec   `json:"spec" yaml:"spec"`
	Targets          []TargetConfig `json:"targets" yaml:"targets"`
	Idx              uint           `json:"idx" yaml:"idx"`
	DeleteAfterSplit bool           `json:"deleteAfterSplit" yaml:"deleteAfterSplit"`
}

// SplitterSpec selects a split strategy by Name. SplitNone defaults to true.
type SplitterSpec struct {
	SplitNone *bool  `json:"splitNone,omitempty" yaml:"splitNone,omitempty"`
	Name      string `json:"name" yaml:"name"`
	Char      string `json:"char,omitempty" yaml:"char,omitempty"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// AddItemConfig configures an append.
type AddItemConfig struct {
	Spec   AddSpec      `json:"spec" yaml:"spec"`
	Target TargetConfig `json:"target" yaml:"target"`
}

// AddSpec selects the payload source of an append by Name.
type AddSpec struct {
	Name    string `json:"name" yaml:"name"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	Key     string `json:"key,omitempty" yaml:"key,omitempty"`
	RtValue string `json:"rtValue,omitempty" yaml:"rtValue,omitempty"`

	// RtValueAlt accepts the snake_case spelling rt_value.
	RtValueAlt string `json:"rt_value,omitempty" yaml:"rt_value,omitempty"`
}

// Runtime returns the runtime value name from either spelling.
func (s AddSpec) Runtime() string {
	if s.RtValue != "" {
		return s.RtValue
	}
	return s.RtValueAlt
}

// TargetConfig describes a destination entry. Header is optional; the
// name defaults to "col_<idx>". TargetType is a value kind name.
type TargetConfig struct {
	Header     *string `json:"header,omitempty" yaml:"header,omitempty"`
	TargetType string  `json:"targetType" yaml:"targetType"`
	Idx        uint    `json:"idx" yaml:"idx"`
}

// splitNone reports the effective SplitNone setting.
func (s SplitterSpec) splitNone() bool {
	return s.SplitNone == nil || *s.SplitNone
}

type operatorHeadJSON struct {
	Type string          `json:"type"`
	Cfg  json.RawMessage `json:"cfg"`
}

// UnmarshalJSON decodes {"type": ..., "cfg": ...}. An unknown type is kept
// for Validate to report.
func (o *OperatorConfig) UnmarshalJSON(data []byte) error {
	var head operatorHeadJSON
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	*o = OperatorConfig{Type: head.Type}
	if len(head.Cfg) == 0 {
		return nil
	}
	target := o.cfgTarget()
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(head.Cfg, target); err != nil {
		return fmt.Errorf("%s cfg: %w", head.Type, err)
	}
	return nil
}

// MarshalJSON encodes the {"type": ..., "cfg": ...} form.
func (o OperatorConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cfg  any    `json:"cfg,omitempty"`
		Type string `json:"type"`
	}{Type: o.Type, Cfg: o.cfg()})
}

type operatorHeadYAML struct {
	Cfg  yaml.Node `yaml:"cfg"`
	Type string    `yaml:"type"`
}

// UnmarshalYAML decodes the same shape as UnmarshalJSON.
func (o *OperatorConfig) UnmarshalYAML(node *yaml.Node) error {
	var head operatorHeadYAML
	if err := node.Decode(&head); err != nil {
		return err
	}
	*o = OperatorConfig{Type: head.Type}
	if head.Cfg.Kind == 0 {
		return nil
	}
	target := o.cfgTarget()
	if target == nil {
		return nil
	}
	if err := head.Cfg.Decode(target); err != nil {
		return fmt.Errorf("%s cfg: %w", head.Type, err)
	}
	return nil
}

// MarshalYAML encodes the {type, cfg} form.
func (o OperatorConfig) MarshalYAML() (any, error) {
	return struct {
		Type string `yaml:"type"`
		Cfg  any    `yaml:"cfg,omitempty"`
	}{Type: o.Type, Cfg: o.cfg()}, nil
}

func (o *OperatorConfig) cfgTarget() any {
	switch o.Type {
	case TypeDeleteItems:
		return &o.Delete
	case TypeSplitItem:
		o.Split = &SplitItemConfig{}
		return o.Split
	case TypeSplitItemN:
		o.SplitN = &SplitItemNConfig{}
		return o.SplitN
	case TypeAddItem:
		o.Add = &AddItemConfig{}
		return o.Add
	}
	return nil
}

func (o OperatorConfig) cfg() any {
	switch o.Type {
	case TypeDeleteItems:
		return o.Delete
	case TypeSplitItem:
		if o.Split != nil {
			return o.Split
		}
	case TypeSplitItemN:
		if o.SplitN != nil {
			return o.SplitN
		}
	case TypeAddItem:
		if o.Add != nil {
			return o.Add
		}
	}
	return nil
}
