package template

// raw.go holds the YAML-decodable shadow of a template document. Every
// amount/duration/timestamp field is a string in the source document (to
// avoid numeric-precision ambiguity) and is parsed into typed values
// during build (parser.go).

type rawDoc struct {
	System  *rawSystem            `yaml:"system"`
	Pool    *rawPool              `yaml:"pool"`
	Rules   *rawRules             `yaml:"rules"`
	Rights  map[string]rawRole    `yaml:"rights"`
	Time    *rawTime              `yaml:"time"`
	Oracles []rawOracle           `yaml:"oracles"`
}

type rawSystem struct {
	Name string `yaml:"name"`
}

type rawPool struct {
	Asset      string   `yaml:"asset"`
	Cap        string   `yaml:"cap,omitempty"`
	Collector  string   `yaml:"collector,omitempty"`
	Formula    string   `yaml:"formula"`
	Metric     string   `yaml:"metric,omitempty"`
	Thresholds []string `yaml:"thresholds,omitempty"`
	Recipient  rawRecipient `yaml:"recipient"`
}

type rawRecipient struct {
	Kind       string `yaml:"kind"`
	Count      uint64 `yaml:"count,omitempty"`
	Role       string `yaml:"role,omitempty"`
	Expression string `yaml:"expression,omitempty"`
}

type rawRules struct {
	Conditions []rawCondition `yaml:"conditions"`
}

type rawCondition struct {
	Type  string     `yaml:"type"`
	Op    string     `yaml:"op"`
	Asset string     `yaml:"asset,omitempty"`
	Oracle string    `yaml:"oracle,omitempty"`
	At    string     `yaml:"at,omitempty"`
	Value string     `yaml:"value,omitempty"`
	Event string     `yaml:"event,omitempty"`
	Then  *rawAction `yaml:"then,omitempty"`
}

type rawAction struct {
	Kind   string `yaml:"kind"`
	Perm   string `yaml:"perm,omitempty"`
	Target string `yaml:"target,omitempty"`
	Amount string `yaml:"amount,omitempty"`
	To     string `yaml:"to,omitempty"`
	From   string `yaml:"from,omitempty"`
	Asset  string `yaml:"asset,omitempty"`
	Name   string `yaml:"name,omitempty"`
}

type rawRole struct {
	Access      rawAccess `yaml:"access"`
	Permissions []string  `yaml:"permissions"`
}

type rawAccess struct {
	Kind      string   `yaml:"kind"`
	Erc20     string   `yaml:"erc20,omitempty"`
	Erc721    string   `yaml:"erc721,omitempty"`
	Whitelist []string `yaml:"whitelist,omitempty"`
	Token     string   `yaml:"token,omitempty"`
	Amount    string   `yaml:"amount,omitempty"`
}

type rawTime struct {
	Start   rawTimeBound `yaml:"start"`
	End     rawTimeBound `yaml:"end"`
	Locks   string       `yaml:"locks"`
	Vesting rawVesting   `yaml:"vesting"`
}

type rawTimeBound struct {
	Kind  string `yaml:"kind"`
	Value string `yaml:"value,omitempty"`
}

type rawVesting struct {
	Kind         string     `yaml:"kind"`
	Duration     string     `yaml:"duration,omitempty"`
	Schedule     []string   `yaml:"schedule,omitempty"`
	Conditions   []rawCondition `yaml:"conditions,omitempty"`
	CliffSeconds string     `yaml:"cliff,omitempty"`
}

type rawOracle struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Source string `yaml:"source"`
}
