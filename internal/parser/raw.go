package parser

import "gopkg.in/yaml.v3"

// The raw* types mirror the authored YAML surface directly; convert.go
// lowers them into internal/ast. Keeping a separate raw layer (rather than
// unmarshaling straight into ast types) lets the condition grammar and the
// type-dispatch-by-key pattern live in one place, the way the teacher's
// internal/config/types.go dispatches a Step's inline config by its Type
// string before building the domain type.
type rawDocument struct {
	Version  string          `yaml:"version"`
	Import   *rawImports     `yaml:"import"`
	Rule     *rawRule        `yaml:"rule"`
	Ruleset  *rawRuleset     `yaml:"ruleset"`
	Pipeline *rawPipeline    `yaml:"pipeline"`
	Registry *rawRegistry    `yaml:"registry"`
	Template *rawTemplate    `yaml:"template"`
}

type rawImports struct {
	Rules     []string `yaml:"rules"`
	Rulesets  []string `yaml:"rulesets"`
	Pipelines []string `yaml:"pipelines"`
	Templates []string `yaml:"templates"`
}

type rawWhen struct {
	EventType      string         `yaml:"event.type"`
	Conditions     []string       `yaml:"conditions"`
	ConditionGroup *rawCondGroup  `yaml:"condition_group"`
}

type rawCondGroup struct {
	All []rawCondNode `yaml:"all"`
	Any []rawCondNode `yaml:"any"`
	Not *rawCondNode  `yaml:"not"`
}

// rawCondNode is either a bare condition string or a nested group; yaml.v3
// hands us a Node so we can inspect its Kind before deciding which.
type rawCondNode struct {
	node yaml.Node
}

func (r *rawCondNode) UnmarshalYAML(value *yaml.Node) error {
	r.node = *value
	return nil
}

type rawRule struct {
	ID          string                 `yaml:"id"`
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	When        rawWhen                `yaml:"when"`
	Score       int                    `yaml:"score"`
	Params      map[string]interface{} `yaml:"params"`
	Metadata    map[string]interface{} `yaml:"metadata"`
}

type rawConclusionBranch struct {
	When      rawWhen `yaml:"when"`
	Default   bool    `yaml:"default"`
	Signal    string  `yaml:"signal"`
	Action    string  `yaml:"action"`
	Infer     *rawInferConfig `yaml:"infer"`
	Reason    string  `yaml:"reason"`
	Terminate bool    `yaml:"terminate"`
}

type rawInferConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Prompt   string `yaml:"prompt"`
}

type rawRuleset struct {
	ID          string                 `yaml:"id"`
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Extends     string                 `yaml:"extends"`
	Rules       []string               `yaml:"rules"`
	Conclusion  []rawConclusionBranch  `yaml:"conclusion"`
	Template    string                 `yaml:"template"`
	Metadata    map[string]interface{} `yaml:"metadata"`
}

type rawRoute struct {
	When rawWhen `yaml:"when"`
	Next string  `yaml:"next"`
}

type rawStep struct {
	ID      string                 `yaml:"id"`
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	When    *rawWhen               `yaml:"when"`
	Routes  []rawRoute             `yaml:"routes"`
	Default string                 `yaml:"default"`
	Next    string                 `yaml:"next"`
	Ruleset string                 `yaml:"ruleset"`
	Service string                 `yaml:"service"`
	Op      string                 `yaml:"op"`
	API     string                 `yaml:"api"`
	Endpoint string                `yaml:"endpoint"`
	Params  map[string]interface{} `yaml:"params"`
	TimeoutMS int                  `yaml:"timeout_ms"`
	Fallback interface{}           `yaml:"fallback"`
	OutVar  string                 `yaml:"out_var"`
	Metadata map[string]interface{} `yaml:"metadata"`
}

type rawPipeline struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Entry       string     `yaml:"entry"`
	When        *rawWhen   `yaml:"when"`
	Steps       []rawStep  `yaml:"steps"`
	Metadata    map[string]interface{} `yaml:"metadata"`
}

type rawRegistryEntry struct {
	When     rawWhen `yaml:"when"`
	Pipeline string  `yaml:"pipeline"`
}

type rawRegistry struct {
	Entries []rawRegistryEntry `yaml:"entries"`
	Default string             `yaml:"default"`
	DefaultReject bool         `yaml:"default_reject"`
}

type rawTemplate struct {
	ID          string                `yaml:"id"`
	Name        string                `yaml:"name"`
	Description string                `yaml:"description"`
	Rules       []string              `yaml:"rules"`
	Conclusion  []rawConclusionBranch `yaml:"conclusion"`
	Defaults    map[string]interface{} `yaml:"defaults"`
}
