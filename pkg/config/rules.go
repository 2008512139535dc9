package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/descindex"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/reconcile"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/relevance"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/transfer"
)

var (
	// ErrMissingAccounts is returned when the rules file maps no accounts.
	ErrMissingAccounts = errors.New("rules file maps no accounts")
	// ErrUnknownRule is returned for an exclusion rule with an unknown type.
	ErrUnknownRule = errors.New("unknown exclusion rule type")
)

// AccountIDs is one account id or a list of them.
type AccountIDs []int64

// UnmarshalYAML accepts both `X1234: 7` and `FOO BANK: [2, 3]`.
func (a *AccountIDs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var id int64
		if err := node.Decode(&id); err != nil {
			return err
		}
		*a = AccountIDs{id}
		return nil
	}
	var ids []int64
	if err := node.Decode(&ids); err != nil {
		return err
	}
	*a = ids
	return nil
}

// ExclusionRule is one entry of the `exclusions` list.
type ExclusionRule struct {
	Type               string   `yaml:"type"`
	Label              string   `yaml:"label"`
	Account            int64    `yaml:"account"`
	Patterns           []string `yaml:"patterns"`
	RequireCategorized bool     `yaml:"require_categorized"`
}

// Rules represents the reconciliation rules file.
type Rules struct {
	Accounts       map[string]int64      `yaml:"accounts"`
	CreditCards    []int64               `yaml:"credit_cards"`
	Excluded       []int64               `yaml:"excluded"`
	KnownAccounts  map[string]AccountIDs `yaml:"known_accounts"`
	WindowDays     int                   `yaml:"window_days"`
	BalanceAliases map[string]string     `yaml:"balance_aliases"`
	Exclusions     []ExclusionRule       `yaml:"exclusions"`
	// BeancountAccounts names ledger accounts in Beancount exports.
	BeancountAccounts map[int64]string `yaml:"beancount_accounts"`
}

// LoadRules reads and parses a rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules parses rules YAML.
func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(rules.Accounts) == 0 {
		return nil, ErrMissingAccounts
	}
	if rules.WindowDays <= 0 {
		rules.WindowDays = transfer.DefaultWindowDays
	}
	return &rules, nil
}

// Mapping builds the account mapping.
func (r *Rules) Mapping() ledger.AccountMapping {
	return ledger.AccountMapping{
		Accounts:    r.Accounts,
		CreditCards: toSet(r.CreditCards),
		Excluded:    toSet(r.Excluded),
	}
}

// Descriptors returns the known account descriptors ordered by key.
func (r *Rules) Descriptors() []descindex.Descriptor {
	keys := make([]string, 0, len(r.KnownAccounts))
	for k := range r.KnownAccounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]descindex.Descriptor, 0, len(keys))
	for _, k := range keys {
		out = append(out, descindex.Descriptor{Key: k, Targets: []int64(r.KnownAccounts[k])})
	}
	return out
}

// ExclusionRules builds the ordered relevance rules. An empty `exclusions`
// list yields nil, which selects the default rule set.
func (r *Rules) ExclusionRules() ([]relevance.Rule, error) {
	if len(r.Exclusions) == 0 {
		return nil, nil
	}
	mapping := r.Mapping()

	rules := make([]relevance.Rule, 0, len(r.Exclusions))
	for i, e := range r.Exclusions {
		switch e.Type {
		case "excluded_account":
			rules = append(rules, relevance.ExcludedAccounts{Accounts: mapping.Excluded})
		case "credit_card_debit":
			rules = append(rules, relevance.CreditCardDebit{Cards: mapping.CreditCards})
		case "payroll":
			rules = append(rules, relevance.Payroll())
		case "description":
			rules = append(rules, relevance.DescriptionContains{Label: e.Label, Patterns: e.Patterns})
		case "reimbursement":
			rules = append(rules, relevance.Reimbursement{
				AccountID:          e.Account,
				Patterns:           e.Patterns,
				RequireCategorized: e.RequireCategorized,
			})
		default:
			return nil, fmt.Errorf("exclusions[%d]: %w: %q", i, ErrUnknownRule, e.Type)
		}
	}
	return rules, nil
}

// ReconcileConfig assembles the pipeline configuration.
func (r *Rules) ReconcileConfig() (reconcile.Config, error) {
	exclusions, err := r.ExclusionRules()
	if err != nil {
		return reconcile.Config{}, err
	}
	return reconcile.Config{
		Mapping:        r.Mapping(),
		Descriptors:    r.Descriptors(),
		Rules:          exclusions,
		WindowDays:     r.WindowDays,
		BalanceAliases: r.BalanceAliases,
	}, nil
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
