package rowz

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

const splitSepJSON = `{
	"type": "splitItem",
	"cfg": {
		"idx": 2,
		"spec": {"name": "separatorChar", "char": ";"},
		"deleteAfterSplit": true,
		"targetLeft": {"idx": 10, "header": "some_float32_left", "targetType": "Float32"},
		"targetRight": {"idx": 11, "header": "some_string_right", "targetType": "String"}
	}
}`

const pipelineJSON = `{
	"version": "1",
	"passes": [
		{
			"comment": "split amount and currency",
			"transformers": [
				{"type": "splitItem", "cfg": {
					"idx": 0,
					"spec": {"name": "pattern", "pattern": "(\\d+\\.\\d+) \\(([[:alpha:]].+)\\)"},
					"deleteAfterSplit": true,
					"targetLeft": {"idx": 1, "header": "amount", "targetType": "Float32"},
					"targetRight": {"idx": 2, "targetType": "String"}
				}},
				{"type": "deleteItems", "cfg": [5, 6]}
			],
			"orderItems": [{"from": 1, "to": 0}]
		},
		{
			"transformers": [
				{"type": "addItem", "cfg": {"spec": {"name": "static", "value": "Europe"}, "target": {"idx": 3, "header": "region", "targetType": "String"}}},
				{"type": "addItem", "cfg": {"spec": {"name": "runtime", "rt_value": "CurrentDateTimeUTC"}, "target": {"idx": 4, "targetType": "DateTime"}}}
			]
		}
	]
}`

const pipelineYAML = `
version: "1"
passes:
  - comment: split amount and currency
    transformers:
      - type: splitItem
        cfg:
          idx: 0
          spec:
            name: pattern
            pattern: '(\d+\.\d+) \(([[:alpha:]].+)\)'
          deleteAfterSplit: true
          targetLeft: {idx: 1, header: amount, targetType: Float32}
          targetRight: {idx: 2, targetType: String}
      - type: deleteItems
        cfg: [5, 6]
    orderItems:
      - {from: 1, to: 0}
  - transformers:
      - type: addItem
        cfg:
          spec: {name: static, value: Europe}
          target: {idx: 3, header: region, targetType: String}
      - type: addItem
        cfg:
          spec: {name: runtime, rtValue: CurrentDateTimeUTC}
          target: {idx: 4, targetType: DateTime}
`

func requirePipelineConfig(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg == nil {
		t.Fatal("expected a configuration")
	}
	if cfg.Version != "1" {
		t.Errorf("expected version 1, got %q", cfg.Version)
	}
	if len(cfg.Passes) != 2 {
		t.Fatalf("expected 2 passes, got %d", len(cfg.Passes))
	}

	first := cfg.Passes[0]
	if first.Comment != "split amount and currency" {
		t.Errorf("unexpected comment %q", first.Comment)
	}
	if len(first.Transformers) != 2 {
		t.Fatalf("expected 2 transformers, got %d", len(first.Transformers))
	}
	split := first.Transformers[0]
	if split.Type != TypeSplitItem || split.Split == nil {
		t.Fatalf("expected a splitItem, got %+v", split)
	}
	if split.Split.Spec.Name != SplitterPattern {
		t.Errorf("expected pattern splitter, got %q", split.Split.Spec.Name)
	}
	if want := `(\d+\.\d+) \(([[:alpha:]].+)\)`; split.Split.Spec.Pattern != want {
		t.Errorf("expected pattern %s, got %s", want, split.Split.Spec.Pattern)
	}
	if !split.Split.DeleteAfterSplit {
		t.Error("expected deleteAfterSplit")
	}
	if h := split.Split.TargetLeft.Header; h == nil || *h != "amount" {
		t.Errorf("expected left header amount, got %v", h)
	}
	if h := split.Split.TargetRight.Header; h != nil {
		t.Errorf("expected no right header, got %q", *h)
	}
	if !reflect.DeepEqual(first.Transformers[1].Delete, []uint{5, 6}) {
		t.Errorf("expected delete [5 6], got %v", first.Transformers[1].Delete)
	}
	if !reflect.DeepEqual(first.OrderItems, []OrderItem{{From: 1, To: 0}}) {
		t.Errorf("unexpected order items %v", first.OrderItems)
	}

	second := cfg.Passes[1]
	if second.OrderItems != nil {
		t.Errorf("expected no order items, got %v", second.OrderItems)
	}
	if len(second.Transformers) != 2 || second.Transformers[0].Add == nil || second.Transformers[1].Add == nil {
		t.Fatalf("expected two addItem transformers, got %+v", second.Transformers)
	}
	if v := second.Transformers[0].Add.Spec.Value; v != "Europe" {
		t.Errorf("expected Europe, got %q", v)
	}
	if rt := second.Transformers[1].Add.Spec.Runtime(); rt != RuntimeCurrentDateTimeUTC {
		t.Errorf("expected CurrentDateTimeUTC, got %v", rt)
	}
}

func requireErrorContains(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error containing %q", msg)
	}
	if !strings.Contains(err.Error(), msg) {
		t.Errorf("expected error containing %q, got %q", msg, err.Error())
	}
}

func TestOperatorConfigJSON(t *testing.T) {
	t.Run("delete items", func(t *testing.T) {
		var oc OperatorConfig
		requireNoError(t, json.Unmarshal([]byte(`{"type": "deleteItems", "cfg": [0, 1]}`), &oc))
		if oc.Type != TypeDeleteItems {
			t.Errorf("expected deleteItems, got %q", oc.Type)
		}
		if !reflect.DeepEqual(oc.Delete, []uint{0, 1}) {
			t.Errorf("expected [0 1], got %v", oc.Delete)
		}
	})

	t.Run("split item with separator", func(t *testing.T) {
		var oc OperatorConfig
		requireNoError(t, json.Unmarshal([]byte(splitSepJSON), &oc))
		if oc.Split == nil {
			t.Fatal("expected a split config")
		}
		if oc.Split.Idx != 2 {
			t.Errorf("expected idx 2, got %d", oc.Split.Idx)
		}
		if oc.Split.Spec.Char != ";" {
			t.Errorf("expected ;, got %q", oc.Split.Spec.Char)
		}
		if !oc.Split.Spec.splitNone() {
			t.Error("absent-value splitting should default to enabled")
		}
		if oc.Split.TargetLeft.Idx != 10 || oc.Split.TargetLeft.TargetType != "Float32" {
			t.Errorf("unexpected left target %+v", oc.Split.TargetLeft)
		}
		if h := oc.Split.TargetRight.Header; h == nil || *h != "some_string_right" {
			t.Errorf("unexpected right header %v", h)
		}
	})

	t.Run("split none can be disabled", func(t *testing.T) {
		var spec SplitterSpec
		requireNoError(t, json.Unmarshal([]byte(`{"name": "separatorChar", "char": " ", "splitNone": false}`), &spec))
		if spec.splitNone() {
			t.Error("expected splitNone to be disabled")
		}
	})

	t.Run("round trip", func(t *testing.T) {
		var oc OperatorConfig
		requireNoError(t, json.Unmarshal([]byte(splitSepJSON), &oc))
		data, err := json.Marshal(oc)
		requireNoError(t, err)

		var back OperatorConfig
		requireNoError(t, json.Unmarshal(data, &back))
		if !reflect.DeepEqual(oc, back) {
			t.Errorf("round trip mismatch\nwant: %+v\ngot:  %+v", oc, back)
		}
	})

	t.Run("unknown type is kept", func(t *testing.T) {
		var oc OperatorConfig
		requireNoError(t, json.Unmarshal([]byte(`{"type": "mergeItems", "cfg": {}}`), &oc))
		if oc.Type != "mergeItems" {
			t.Errorf("expected mergeItems, got %q", oc.Type)
		}
	})

	t.Run("malformed cfg", func(t *testing.T) {
		var oc OperatorConfig
		err := json.Unmarshal([]byte(`{"type": "deleteItems", "cfg": {"idx": 1}}`), &oc)
		requireErrorContains(t, err, "deleteItems cfg")
	})
}

func TestParseConfig(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		cfg, err := ParseJSON([]byte(pipelineJSON))
		requireNoError(t, err)
		requirePipelineConfig(t, cfg)
	})

	t.Run("yaml", func(t *testing.T) {
		cfg, err := ParseYAML([]byte(pipelineYAML))
		requireNoError(t, err)
		requirePipelineConfig(t, cfg)
	})

	t.Run("msgpack", func(t *testing.T) {
		var raw map[string]any
		requireNoError(t, json.Unmarshal([]byte(pipelineJSON), &raw))
		data, err := msgpack.Marshal(raw)
		requireNoError(t, err)

		cfg, err := ParseMsgpack(data)
		requireNoError(t, err)
		requirePipelineConfig(t, cfg)
	})

	t.Run("yaml marshal keeps the union shape", func(t *testing.T) {
		cfg, err := ParseJSON([]byte(pipelineJSON))
		requireNoError(t, err)
		data, err := yaml.Marshal(cfg)
		requireNoError(t, err)

		back, err := ParseYAML(data)
		requireNoError(t, err)
		requirePipelineConfig(t, back)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{"passes": [`))
		requireErrorContains(t, err, "failed to parse JSON")
		_, err = ParseYAML([]byte("passes: [\n"))
		requireErrorContains(t, err, "failed to parse YAML")
		_, err = ParseMsgpack([]byte{0xc1})
		requireErrorContains(t, err, "failed to parse msgpack")
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		return path
	}

	for _, path := range []string{
		write("pipeline.json", pipelineJSON),
		write("pipeline.yaml", pipelineYAML),
		write("pipeline.YML", pipelineYAML),
	} {
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", path, err)
		}
		requirePipelineConfig(t, cfg)
	}

	_, err := LoadFile(write("pipeline.toml", "x = 1"))
	requireErrorContains(t, err, "unsupported file format: .toml")

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	parse := func(t *testing.T, passes string) Config {
		t.Helper()
		cfg, err := ParseJSON([]byte(`{"passes": [` + passes + `]}`))
		requireNoError(t, err)
		return *cfg
	}
	problems := func(t *testing.T, cfg Config) map[string]string {
		t.Helper()
		var verrs ValidationErrors
		if err := cfg.Validate(); !errors.As(err, &verrs) {
			t.Fatalf("expected ValidationErrors, got %v", err)
		}
		out := map[string]string{}
		for _, v := range verrs {
			out[strings.Join(v.Path, ".")] = v.Message
		}
		return out
	}
	expectProblem := func(t *testing.T, got map[string]string, path, msg string) {
		t.Helper()
		m, ok := got[path]
		if !ok {
			t.Errorf("no problem reported at %s in %v", path, got)
			return
		}
		if !strings.Contains(m, msg) {
			t.Errorf("%s: expected message containing %q, got %q", path, msg, m)
		}
	}

	t.Run("valid configuration", func(t *testing.T) {
		cfg, err := ParseJSON([]byte(pipelineJSON))
		requireNoError(t, err)
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("collects every problem with its path", func(t *testing.T) {
		cfg := parse(t, `{"transformers": [
			{"type": "deleteItems", "cfg": []},
			{"type": "splitItem", "cfg": {"idx": 0, "spec": {"name": "separatorChar", "char": ";;"},
				"targetLeft": {"idx": 1, "targetType": "Float128"}, "targetRight": {"idx": 2, "targetType": "String"}}},
			{"type": "mergeItems"},
			{"cfg": [1]}
		]}`)
		got := problems(t, cfg)
		expectProblem(t, got, "passes[0].transformers[0].cfg", "")
		expectProblem(t, got, "passes[0].transformers[1].cfg.spec.char", "")
		expectProblem(t, got, "passes[0].transformers[1].cfg.targetLeft.targetType", "")
		expectProblem(t, got, "passes[0].transformers[2].type", "mergeItems")
		expectProblem(t, got, "passes[0].transformers[3].type", "")
		if len(got) != 5 {
			t.Errorf("expected 5 problems, got %d: %v", len(got), got)
		}
	})

	t.Run("regex must compile and have two groups", func(t *testing.T) {
		cfg := parse(t, `{"transformers": [
			{"type": "splitItem", "cfg": {"spec": {"name": "pattern", "pattern": "(\\d+"},
				"targetLeft": {"targetType": "String"}, "targetRight": {"targetType": "String"}}},
			{"type": "splitItem", "cfg": {"spec": {"name": "pattern", "pattern": "(\\d+)"},
				"targetLeft": {"targetType": "String"}, "targetRight": {"targetType": "String"}}}
		]}`)
		got := problems(t, cfg)
		expectProblem(t, got, "passes[0].transformers[0].cfg.spec.pattern", "invalid regex")
		expectProblem(t, got, "passes[0].transformers[1].cfg.spec.pattern", "1 capture group(s)")
	})

	t.Run("split n", func(t *testing.T) {
		cfg := parse(t, `{"transformers": [
			{"type": "splitItemN", "cfg": {"spec": {"name": "pattern", "pattern": "(a)(b)"},
				"targets": [{"targetType": "String"}]}}
		]}`)
		got := problems(t, cfg)
		expectProblem(t, got, "passes[0].transformers[0].cfg.spec.name", "")
		expectProblem(t, got, "passes[0].transformers[0].cfg.targets", "")
	})

	t.Run("add item", func(t *testing.T) {
		cfg := parse(t, `{"transformers": [
			{"type": "addItem", "cfg": {"spec": {"name": "meta"}, "target": {"targetType": "String"}}},
			{"type": "addItem", "cfg": {"spec": {"name": "runtime", "rtValue": "Now"}, "target": {"targetType": "DateTime"}}},
			{"type": "addItem", "cfg": {"spec": {"name": "runtime", "rtValue": "CurrentDateTimeUTC"}, "target": {"targetType": "String"}}},
			{"type": "addItem", "cfg": {"spec": {"name": "random"}, "target": {"targetType": "String"}}},
			{"type": "addItem"}
		]}`)
		got := problems(t, cfg)
		expectProblem(t, got, "passes[0].transformers[0].cfg.spec.key", "")
		expectProblem(t, got, "passes[0].transformers[1].cfg.spec.rtValue", "")
		expectProblem(t, got, "passes[0].transformers[2].cfg.target.targetType", "")
		expectProblem(t, got, "passes[0].transformers[3].cfg.spec.name", "")
		if m := got["passes[0].transformers[4].cfg"]; m != "missing" {
			t.Errorf("expected missing, got %q", m)
		}
	})

	t.Run("error text", func(t *testing.T) {
		one := ValidationErrors{{Path: []string{"passes[0]"}, Message: "bad"}}
		if s := one.Error(); s != "passes[0]: bad" {
			t.Errorf("unexpected text %q", s)
		}
		two := append(one, ValidationError{Message: "worse"})
		requireErrorContains(t, two, "2 validation errors")
		requireErrorContains(t, two, "  2. worse")
	})
}
