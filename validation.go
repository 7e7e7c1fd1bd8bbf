package rowz

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zoobzio/rowz/value"
)

// ValidationError reports one configuration problem and where it is.
type ValidationError struct {
	Path    []string // Path to the field, e.g. passes[0].transformers[1].cfg.idx
	Message string
}

func (e ValidationError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", strings.Join(e.Path, "."), e.Message)
}

// ValidationErrors collects every problem found in a configuration.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the configuration without building it. It returns nil or
// ValidationErrors holding every problem found.
func (c Config) Validate() error {
	var errs ValidationErrors
	for i, pass := range c.Passes {
		path := []string{fmt.Sprintf("passes[%d]", i)}
		for j, op := range pass.Transformers {
			validateOperator(op, extend(path, fmt.Sprintf("transformers[%d]", j)), &errs)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateOperator(op OperatorConfig, path []string, errs *ValidationErrors) {
	cfgPath := extend(path, "cfg")
	switch op.Type {
	case TypeDeleteItems:
		if len(op.Delete) == 0 {
			addError(errs, cfgPath, "at least one idx is required")
		}
	case TypeSplitItem:
		if op.Split == nil {
			addError(errs, cfgPath, "missing")
			return
		}
		validateSplitter(op.Split.Spec, extend(cfgPath, "spec"), true, errs)
		validateTarget(op.Split.TargetLeft, extend(cfgPath, "targetLeft"), errs)
		validateTarget(op.Split.TargetRight, extend(cfgPath, "targetRight"), errs)
	case TypeSplitItemN:
		if op.SplitN == nil {
			addError(errs, cfgPath, "missing")
			return
		}
		validateSplitter(op.SplitN.Spec, extend(cfgPath, "spec"), false, errs)
		if len(op.SplitN.Targets) < 2 {
			addError(errs, extend(cfgPath, "targets"), "at least two targets are required")
		}
		for i, target := range op.SplitN.Targets {
			validateTarget(target, extend(cfgPath, fmt.Sprintf("targets[%d]", i)), errs)
		}
	case TypeAddItem:
		if op.Add == nil {
			addError(errs, cfgPath, "missing")
			return
		}
		validateAdd(*op.Add, cfgPath, errs)
	case "":
		addError(errs, extend(path, "type"), "operator type is required")
	default:
		addError(errs, extend(path, "type"), fmt.Sprintf("unknown operator type %q", op.Type))
	}
}

func validateSplitter(spec SplitterSpec, path []string, allowPattern bool, errs *ValidationErrors) {
	switch spec.Name {
	case SplitterSeparatorChar:
		if utf8.RuneCountInString(spec.Char) != 1 {
			addError(errs, extend(path, "char"), fmt.Sprintf("must be exactly one character, got %q", spec.Char))
		}
	case SplitterPattern:
		if !allowPattern {
			addError(errs, extend(path, "name"), "pattern splitting produces a pair; use separatorChar")
			return
		}
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			addError(errs, extend(path, "pattern"), fmt.Sprintf("invalid regex: %v", err))
			return
		}
		if n := re.NumSubexp(); n != 2 {
			addError(errs, extend(path, "pattern"), fmt.Sprintf("%d capture group(s), need exactly two", n))
		}
	case "":
		addError(errs, extend(path, "name"), "splitter name is required")
	default:
		addError(errs, extend(path, "name"), fmt.Sprintf("unknown splitter %q", spec.Name))
	}
}

func validateTarget(target TargetConfig, path []string, errs *ValidationErrors) {
	if _, err := value.ParseKind(target.TargetType); err != nil {
		addError(errs, extend(path, "targetType"), err.Error())
	}
}

func validateAdd(cfg AddItemConfig, path []string, errs *ValidationErrors) {
	specPath := extend(path, "spec")
	validateTarget(cfg.Target, extend(path, "target"), errs)
	switch cfg.Spec.Name {
	case AddStatic:
	case AddMeta:
		if cfg.Spec.Key == "" {
			addError(errs, extend(specPath, "key"), "metadata key is required")
		}
	case AddRuntime:
		if rt := cfg.Spec.Runtime(); rt != RuntimeCurrentDateTimeUTC {
			addError(errs, extend(specPath, "rtValue"), fmt.Sprintf("unknown runtime value %q", rt))
			return
		}
		if kind, err := value.ParseKind(cfg.Target.TargetType); err == nil && kind != value.DateTime {
			addError(errs, extend(path, "target", "targetType"), "runtime values require targetType DateTime")
		}
	case "":
		addError(errs, extend(specPath, "name"), "add spec name is required")
	default:
		addError(errs, extend(specPath, "name"), fmt.Sprintf("unknown add spec %q", cfg.Spec.Name))
	}
}

func addError(errs *ValidationErrors, path []string, msg string) {
	*errs = append(*errs, ValidationError{Path: path, Message: msg})
}

func extend(path []string, elems ...string) []string {
	out := make([]string, 0, len(path)+len(elems))
	out = append(out, path...)
	return append(out, elems...)
}
