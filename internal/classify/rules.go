package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule maps a log-content substring to a metric name. Rules are evaluated in
// slice order and the first match wins: several substrings overlap (a generic
// phrase can be a prefix of an EIP-scoped one), so the table must never be
// held in an unordered map.
type Rule struct {
	Match  string `yaml:"match"`
	Metric string `yaml:"metric"`
}

// DefaultRules is the built-in discard-reason table for geth txpool traces,
// evaluated top to bottom.
var DefaultRules = []Rule{
	{"nonce too low", "invalidation_nonce_low"},
	{"nonce too high", "invalidation_nonce_high"},
	{"empty authorization list", "invalidation_auth_list_empty"},
	{"invalid auth signature", "invalidation_auth_sig_invalid"},
	{"authorization nonce mismatch", "invalidation_auth_nonce_mismatch"},
	{"authorizer has code", "invalidation_authorizer_has_code"},
	{"insufficient funds", "invalidation_insufficient_funds"},
	{"intrinsic gas too low", "invalidation_intrinsic_gas"},
	{"oversized data", "invalidation_oversized_data"},
	{"transaction type not supported", "invalidation_type_not_supported"},
	{"invalid sender", "invalidation_invalid_sender"},
	{"negative value", "invalidation_negative_value"},
}

// MetricOther is emitted when a discard line matches none of the rules.
const MetricOther = "invalidation_other"

// rulesFile is the on-disk YAML structure. A YAML sequence preserves order,
// so a rules file keeps the same first-match semantics as DefaultRules.
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule table from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}
	for i, r := range rf.Rules {
		if r.Match == "" || r.Metric == "" {
			return nil, fmt.Errorf("rules file %s: rule %d is missing match or metric", path, i)
		}
	}
	return rf.Rules, nil
}
