package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Harshitk-cp/ise/internal/arbitrage"
	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/scoring"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ISE_ENV", filepath.Join(t.TempDir(), "missing.env"))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

const treeYAML = `
belief:
  id: 1
  statement: Remote work raises productivity
arguments:
  - id: 10
    side: pro
    truth_score: 0.8
  - id: 11
    side: con
    truth_score: 0.4
`

func TestResolve(t *testing.T) {
	out, err := run(t, "resolve", "-f", writeFile(t, "tree.yaml", treeYAML))
	require.NoError(t, err)

	var res scoring.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 0.8/1.2, res.TruthScore, 1e-9)
	assert.InDelta(t, 0.8, res.Breakdown.ProRank, 1e-9)
	assert.InDelta(t, 0.4, res.Breakdown.ConRank, 1e-9)
	require.Len(t, res.Breakdown.Arguments, 2)
	assert.Equal(t, int64(10), res.Breakdown.Arguments[0].ArgumentID)
	assert.Equal(t, domain.VolatilityLow, res.Volatility)
}

func TestResolve_JSONSnapshotAndYAMLOutput(t *testing.T) {
	snap := `{"belief": {"id": 3, "statement": "x"}, "arguments": [{"id": 1, "side": "pro", "truth_score": 0.9}]}`
	out, err := run(t, "resolve", "-f", writeFile(t, "tree.json", snap), "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "truth_score: 1")
	assert.Contains(t, out, "breakdown:")
}

func TestResolve_Rejects(t *testing.T) {
	tests := []struct {
		name string
		snap string
		want string
	}{
		{
			name: "out of range truth",
			snap: "belief: {id: 1, statement: x}\narguments: [{id: 1, side: pro, truth_score: 1.5}]\n",
			want: "truth_score",
		},
		{
			name: "bad side",
			snap: "belief: {id: 1, statement: x}\narguments: [{id: 1, side: maybe, truth_score: 0.5}]\n",
			want: "side",
		},
		{
			name: "unknown field",
			snap: "belief: {id: 1, statement: x, truth: 0.4}\n",
			want: "truth",
		},
		{
			name: "orphan argument",
			snap: "belief: {id: 1, statement: x}\narguments: [{id: 1, parent_id: 7, side: pro, truth_score: 0.5}]\n",
			want: "parent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "resolve", "-f", writeFile(t, "tree.yaml", tt.snap))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := run(t, "resolve")
	assert.Error(t, err)
}

func TestLinkage(t *testing.T) {
	snap := `
links:
  - side: agree
    strength: 0.9
  - side: disagree
    strength: 0.3
`
	out, err := run(t, "linkage", "-f", writeFile(t, "links.yaml", snap), "--depth", "1")
	require.NoError(t, err)

	var res scoring.LinkageResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 0.5, res.LinkageScore, 1e-9)
	assert.InDelta(t, 0.25, res.AttenuatedScore, 1e-9)

	_, err = run(t, "linkage", "-f", writeFile(t, "links.yaml", "links: [{side: agree, strength: 2}]\n"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEquivalency(t *testing.T) {
	out, err := run(t, "equivalency", "Nuclear power is safe", "nuclear power is safe")
	require.NoError(t, err)
	var res scoring.EquivalencyResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 1.0, res.Lexical, 1e-9)
	assert.Equal(t, []string{scoring.LayerLexical}, res.LayersUsed)

	out, err = run(t, "equivalency", "apples oranges", "trucks bridges", "--semantic", "0.5")
	require.NoError(t, err)
	res = scoring.EquivalencyResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{scoring.LayerLexical, scoring.LayerSemantic}, res.LayersUsed)
	assert.InDelta(t, scoring.SemanticWeight*0.5, res.EquivalencyScore, 1e-9)

	_, err = run(t, "equivalency", "a", "b", "--semantic", "1.5")
	assert.ErrorIs(t, err, domain.ErrValidation)

	t.Setenv("EMBEDDING_PROVIDER", "mock")
	out, err = run(t, "equivalency", "taxes go up", "taxes go up", "--embed")
	require.NoError(t, err)
	res = scoring.EquivalencyResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Semantic)
	assert.InDelta(t, 1.0, *res.Semantic, 1e-6)
}

func TestUniqueness(t *testing.T) {
	out, err := run(t, "uniqueness", "solar panels are cheap", "--prior", "wind turbines are loud")
	require.NoError(t, err)
	var res uniquenessResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Greater(t, res.Uniqueness, 0.5)
	assert.InDelta(t, scoring.NoveltyPeak, res.NoveltyMultiplier, 1e-9)

	out, err = run(t, "uniqueness", "solar panels are cheap", "--prior", "solar panels are cheap")
	require.NoError(t, err)
	res = uniquenessResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 0, res.Uniqueness, 1e-9)
	assert.InDelta(t, scoring.NoveltyFloor, res.NoveltyMultiplier, 1e-9)
}

const cbaYAML = `
id: 1
title: Four-day week
items:
  - id: 100
    description: Retention
    type: benefit
    predicted_impact: 1000
    likelihood:
      id: 5
      statement: Retention improves
      estimates:
        - id: 1
          probability: 0.5
          submitted_at: 2026-01-01T00:00:00Z
          arguments:
            - id: 1
              side: pro
              truth_score: 1
        - id: 2
          probability: 0.8
          submitted_at: 2026-01-02T00:00:00Z
  - id: 101
    description: Overtime
    type: cost
    predicted_impact: -200
    likelihood:
      id: 6
      active_likelihood: 0.5
`

func TestCBA(t *testing.T) {
	out, err := run(t, "cba", "-f", writeFile(t, "cba.yaml", cbaYAML))
	require.NoError(t, err)

	var c domain.CBA
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	require.Len(t, c.Items, 2)
	assert.Equal(t, int64(1), c.Items[0].Likelihood.ActiveEstimateID)
	assert.InDelta(t, 0.5, c.Items[0].Likelihood.ActiveLikelihood, 1e-9)
	assertDecimal(t, "500", c.Items[0].ExpectedValue)
	assertDecimal(t, "-100", c.Items[1].ExpectedValue)
	assertDecimal(t, "500", c.TotalExpectedBenefits)
	assertDecimal(t, "100", c.TotalExpectedCosts)
	assertDecimal(t, "400", c.NetExpectedValue)
}

func TestCBA_RejectsWrongImpactSign(t *testing.T) {
	snap := strings.Replace(cbaYAML, "predicted_impact: -200", "predicted_impact: 200", 1)
	_, err := run(t, "cba", "-f", writeFile(t, "cba.yaml", snap))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestQuote(t *testing.T) {
	out, err := run(t, "quote", "--yes", "100", "--no", "100", "--outcome", "yes", "--buy", "50")
	require.NoError(t, err)

	var res struct {
		Before struct {
			Yes decimal.Decimal `json:"yes_price"`
		} `json:"prices_before"`
		Quote struct {
			Shares        decimal.Decimal `json:"shares"`
			PricePerShare decimal.Decimal `json:"price_per_share"`
			YesAfter      decimal.Decimal `json:"yes_after"`
			NoAfter       decimal.Decimal `json:"no_after"`
		} `json:"quote"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assertDecimal(t, "0.5", res.Before.Yes)
	assertDecimal(t, "33.333333", res.Quote.Shares)
	assertDecimal(t, "1.5", res.Quote.PricePerShare)
	assertDecimal(t, "66.666667", res.Quote.YesAfter)
	assertDecimal(t, "150", res.Quote.NoAfter)

	out, err = run(t, "quote", "--outcome", "no", "--sell", "10")
	require.NoError(t, err)
	assert.Contains(t, out, `"side": "sell"`)

	_, err = run(t, "quote", "--buy", "5", "--sell", "5")
	assert.Error(t, err)
	_, err = run(t, "quote")
	assert.Error(t, err)
	_, err = run(t, "quote", "--yes", "0", "--buy", "5")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = run(t, "quote", "--outcome", "maybe", "--buy", "5")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestArbitrage(t *testing.T) {
	snap := `
candidates:
  - belief_id: 1
    statement: Fusion by 2040
    truth_score: 0.9
    pool: {yes_shares: 100, no_shares: 100}
  - belief_id: 2
    statement: Coin flip
    truth_score: 0.5
    pool: {yes_shares: 100, no_shares: 100}
  - belief_id: 3
    statement: Overhyped
    truth_score: 0.1
    pool: {yes_shares: 100, no_shares: 300}
`
	out, err := run(t, "arbitrage", "-f", writeFile(t, "markets.yaml", snap), "--min", "0.05")
	require.NoError(t, err)

	var opps []arbitrage.Opportunity
	require.NoError(t, json.Unmarshal([]byte(out), &opps))
	require.Len(t, opps, 2)
	assert.Equal(t, int64(3), opps[0].BeliefID)
	assert.Equal(t, arbitrage.DirectionOvervalued, opps[0].Direction)
	assert.InDelta(t, 0.65, opps[0].Magnitude, 1e-9)
	assert.Equal(t, int64(1), opps[1].BeliefID)
	assert.Equal(t, arbitrage.DirectionUndervalued, opps[1].Direction)

	out, err = run(t, "arbitrage", "-f", writeFile(t, "markets.yaml", snap), "--limit", "1")
	require.NoError(t, err)
	opps = nil
	require.NoError(t, json.Unmarshal([]byte(out), &opps))
	assert.Len(t, opps, 1)

	_, err = run(t, "arbitrage", "-f", writeFile(t, "markets.yaml", snap), "--min", "2")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPortfolio(t *testing.T) {
	snap := `
balance: {user_id: 7, current_balance: 950, realized_pnl: 0}
holdings:
  - belief_id: 1
    outcome: yes
    quantity: 10
    avg_purchase_price: 0.5
pools:
  - belief_id: 1
    yes_shares: 100
    no_shares: 300
`
	out, err := run(t, "portfolio", "-f", writeFile(t, "portfolio.yaml", snap))
	require.NoError(t, err)

	var p arbitrage.Portfolio
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	require.Len(t, p.Positions, 1)
	assertDecimal(t, "0.75", p.Positions[0].CurrentPrice)
	assertDecimal(t, "5", p.Invested)
	assertDecimal(t, "7.5", p.UnrealizedValue)
	assertDecimal(t, "957.5", p.TotalValue)
	assert.InDelta(t, 0.5, p.ROI, 1e-9)

	missing := strings.Replace(snap, "  - belief_id: 1\n    yes_shares", "  - belief_id: 2\n    yes_shares", 1)
	_, err = run(t, "portfolio", "-f", writeFile(t, "portfolio.yaml", missing))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = run(t, "portfolio")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDatabaseCommandsNeedURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	for _, args := range [][]string{
		{"recompute"},
		{"likelihood", "3"},
		{"compare", "1", "2"},
		{"arbitrage"},
		{"portfolio", "--user", "7"},
		{"market", "show", "--belief", "1"},
		{"expire", "--once"},
	} {
		_, err := run(t, args...)
		require.Error(t, err, strings.Join(args, " "))
		assert.Contains(t, err.Error(), "DATABASE_URL is required", strings.Join(args, " "))
	}

	_, err := run(t, "likelihood", "abc")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVersionAndOutputFormat(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ise "))

	out, err = run(t, "version", "-o", "json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go")

	_, err = run(t, "version", "-o", "xml")
	assert.Error(t, err)
}
