package scoring

import (
	"sort"

	"github.com/Harshitk-cp/ise/internal/domain"
)

// ArgumentScore is one argument's contribution in a Breakdown.
type ArgumentScore struct {
	ArgumentID        int64       `json:"argument_id"`
	ParentID          int64       `json:"parent_id"`
	Side              domain.Side `json:"side"`
	Depth             int         `json:"depth"`
	SelfTruth         float64     `json:"self_truth"`
	FallacyPenalty    float64     `json:"fallacy_penalty"`
	EvidenceBoost     float64     `json:"evidence_boost"`
	LinkageScore      float64     `json:"linkage_score"`
	AttenuatedLinkage float64     `json:"attenuated_linkage"`
	ProSubRank        float64     `json:"pro_sub_rank"`
	ConSubRank        float64     `json:"con_sub_rank"`
	Rank              float64     `json:"rank"`
	ImpactScore       float64     `json:"impact_score"`
	Debunked          bool        `json:"debunked"`
}

type Breakdown struct {
	ProRank              float64         `json:"pro_rank"`
	ConRank              float64         `json:"con_rank"`
	NetEvidence          float64         `json:"net_evidence"`
	EvidenceContribution float64         `json:"evidence_contribution"`
	Arguments            []ArgumentScore `json:"arguments"`
}

type Result struct {
	TruthScore         float64           `json:"truth_score"`
	ConfidenceInterval float64           `json:"confidence_interval"`
	Volatility         domain.Volatility `json:"volatility"`
	Breakdown          Breakdown         `json:"breakdown"`
}

// Scores is the derived state to write back onto the belief.
func (r *Result) Scores() domain.BeliefScores {
	return domain.BeliefScores{
		TruthScore:         r.TruthScore,
		ConfidenceInterval: r.ConfidenceInterval,
		Volatility:         r.Volatility,
	}
}

// Argument returns the breakdown entry for one argument.
func (r *Result) Argument(id int64) (ArgumentScore, bool) {
	for _, a := range r.Breakdown.Arguments {
		if a.ArgumentID == id {
			return a, true
		}
	}
	return ArgumentScore{}, false
}

// Resolver computes ReasonRank truth scores.
type Resolver struct {
	cfg Config
}

func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg.normalized()}
}

func (r *Resolver) Config() Config {
	return r.cfg
}

// ResolveArgumentTree validates the tree shape, then resolves it.
// history is the belief's recorded score points and may be empty.
func (r *Resolver) ResolveArgumentTree(belief domain.Belief, arguments []domain.Argument, evidence []domain.Evidence, history []domain.ScorePoint) (*Result, error) {
	tree, err := BuildTree(belief.ID, arguments, r.cfg.MaxDepth)
	if err != nil {
		return nil, err
	}
	return r.Resolve(tree, evidence, belief.AdversarialCycles, history), nil
}

// Resolve scores a validated tree. It is total: any tree yields a result in range.
func (r *Resolver) Resolve(tree *Tree, evidence []domain.Evidence, adversarialCycles int, history []domain.ScorePoint) *Result {
	rootEvidence, argEvidence := splitEvidence(tree, evidence)

	pass := &rankPass{
		cfg:         r.cfg,
		tree:        tree,
		argEvidence: argEvidence,
		scores:      make(map[int64]ArgumentScore, tree.Len()),
	}

	var bd Breakdown
	for _, id := range tree.Children(0) {
		s := pass.rank(id)
		if s.Side == domain.SideCon {
			bd.ConRank += s.Rank
		} else {
			bd.ProRank += s.Rank
		}
	}

	var ratio float64
	if total := bd.ProRank + bd.ConRank; total > 0 {
		ratio = bd.ProRank / total
	}
	bd.NetEvidence = NetEvidence(rootEvidence)
	bd.EvidenceContribution = r.cfg.EvidenceContribution(bd.NetEvidence)

	bd.Arguments = make([]ArgumentScore, 0, len(pass.scores))
	for _, s := range pass.scores {
		bd.Arguments = append(bd.Arguments, s)
	}
	sort.Slice(bd.Arguments, func(i, j int) bool {
		if bd.Arguments[i].Rank != bd.Arguments[j].Rank {
			return bd.Arguments[i].Rank > bd.Arguments[j].Rank
		}
		return bd.Arguments[i].ArgumentID < bd.Arguments[j].ArgumentID
	})

	truth := clamp01(ratio + bd.EvidenceContribution)
	return &Result{
		TruthScore:         truth,
		ConfidenceInterval: ConfidenceInterval(truth, tree.Len()+len(evidence)),
		Volatility:         ComputeVolatility(history, adversarialCycles),
		Breakdown:          bd,
	}
}

// splitEvidence separates evidence on the root claim from evidence scoped
// to an argument in the tree. Evidence naming an unknown argument counts
// toward the root.
func splitEvidence(tree *Tree, evidence []domain.Evidence) ([]domain.Evidence, map[int64][]domain.Evidence) {
	var root []domain.Evidence
	byArg := make(map[int64][]domain.Evidence)
	for _, e := range evidence {
		if _, ok := tree.Argument(e.ArgumentID); e.ArgumentID != 0 && ok {
			byArg[e.ArgumentID] = append(byArg[e.ArgumentID], e)
			continue
		}
		root = append(root, e)
	}
	return root, byArg
}

type rankPass struct {
	cfg         Config
	tree        *Tree
	argEvidence map[int64][]domain.Evidence
	scores      map[int64]ArgumentScore
}

func (p *rankPass) rank(id int64) ArgumentScore {
	if s, ok := p.scores[id]; ok {
		return s
	}
	a, _ := p.tree.Argument(id)
	depth := p.tree.Depth(id)

	var penalty float64
	for _, f := range a.Fallacies {
		penalty += f.Penalty()
	}
	boost := p.cfg.EvidenceContribution(NetEvidence(p.argEvidence[id]))
	self := clamp01(clamp01(a.TruthScore) + boost - penalty)

	link := ResolveLinkage(a.Linkage, depth)
	if len(a.Linkage) == 0 {
		link.LinkageScore = a.LinkageScore
		link.AttenuatedScore = a.LinkageScore * DepthAttenuation(depth)
	}

	s := ArgumentScore{
		ArgumentID:        id,
		ParentID:          a.ParentID,
		Side:              a.Side,
		Depth:             depth,
		SelfTruth:         self,
		FallacyPenalty:    penalty,
		EvidenceBoost:     boost,
		LinkageScore:      link.LinkageScore,
		AttenuatedLinkage: link.AttenuatedScore,
	}

	children := p.tree.Children(id)
	for _, cid := range children {
		c := p.rank(cid)
		if c.Side == domain.SideCon {
			s.ConSubRank += c.Rank
		} else {
			s.ProSubRank += c.Rank
		}
	}

	rank := self
	if len(children) > 0 {
		d := p.cfg.Damping
		rank = (1-d)*self + d*clamp01(s.ProSubRank-s.ConSubRank)
	}
	s.Rank = clamp01(rank * linkageFactor(link.LinkageScore))

	s.ImpactScore = s.Rank
	if a.Side == domain.SideCon {
		s.ImpactScore = -s.Rank
	}
	s.Debunked = s.Rank < p.cfg.DebunkedThreshold

	p.scores[id] = s
	return s
}
