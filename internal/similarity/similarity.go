// Package similarity answers "who plays like X" within X's position group.
//
// The query's cohort is scaled feature-wise to [0,1], projected onto its
// first two principal components and clustered with k-means. Similarity to
// the query is 100 × (maxDist − dist) / maxDist over the 2D embedding, where
// maxDist is the largest distance from the query to any cohort member.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pable/go-fbref-scout/internal/model"
)

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrAmbiguousPlayer = errors.New("player name is ambiguous")
	ErrNoTemplate      = errors.New("no similarity template for position group")
	ErrUndefinedTraits = errors.New("player has undefined template traits")
	ErrCohortTooSmall  = errors.New("cohort too small")
)

const (
	defaultClusters      = 20
	defaultTopN          = 5
	defaultSeed          = 42
	defaultRestarts      = 10
	defaultMaxIterations = 300
)

// Option configures an Engine.
type Option func(*Engine)

// WithTemplates sets the traits compared per position group.
func WithTemplates(templates map[string][]string) Option {
	return func(e *Engine) {
		e.templates = make(map[string][]string, len(templates))
		for g, ts := range templates {
			e.templates[g] = append([]string(nil), ts...)
		}
	}
}

// WithSeed sets the k-means seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithRestarts sets how many k-means initializations are tried.
func WithRestarts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.restarts = n
		}
	}
}

// WithMaxIterations caps Lloyd iterations per restart.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIter = n
		}
	}
}

// WithDefaults sets the cluster count and result size used when a query
// leaves them zero.
func WithDefaults(clusters, topN int) Option {
	return func(e *Engine) {
		if clusters > 0 {
			e.clusters = clusters
		}
		if topN > 0 {
			e.topN = topN
		}
	}
}

// Engine runs similarity queries. It holds no per-query state and is safe
// for concurrent use.
type Engine struct {
	templates map[string][]string
	seed      int64
	restarts  int
	maxIter   int
	clusters  int
	topN      int
}

// New returns an Engine with the given options applied over the defaults.
func New(opts ...Option) *Engine {
	e := &Engine{
		templates: map[string][]string{},
		seed:      defaultSeed,
		restarts:  defaultRestarts,
		maxIter:   defaultMaxIterations,
		clusters:  defaultClusters,
		topN:      defaultTopN,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Query identifies the player to compare. Squad may be empty when the name
// is unique; Group narrows a name that appears in several groups.
type Query struct {
	Name     string
	Squad    string
	Group    string
	Clusters int
	TopN     int
}

// Match is one ranked peer.
type Match struct {
	model.Identity
	MainPosition  string  `json:"main_position"`
	PositionGroup string  `json:"position_group"`
	Similarity    float64 `json:"similarity"`
	Distance      float64 `json:"distance"`
	Cluster       int     `json:"cluster"`
}

// Result is the answer to one query.
type Result struct {
	Query         model.Identity `json:"query"`
	MainPosition  string         `json:"main_position"`
	PositionGroup string         `json:"position_group"`
	Traits        []string       `json:"traits"`
	CohortSize    int            `json:"cohort_size"`
	Clusters      int            `json:"clusters"`
	QueryCluster  int            `json:"query_cluster"`
	Inertia       float64        `json:"inertia"`
	Matches       []Match        `json:"matches"`
}

// Similar ranks the query's cohort peers by similarity. The cohort is every
// record of t in the query's position group whose template traits are all
// defined. When the cohort has fewer than k+1 members k is lowered to n−1;
// fewer than two members is ErrCohortTooSmall.
func (e *Engine) Similar(t *model.Table, q Query) (*Result, error) {
	target, err := e.find(t, q)
	if err != nil {
		return nil, err
	}
	traits, ok := e.templates[target.PositionGroup]
	if !ok || len(traits) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplate, target.PositionGroup)
	}
	if missing := undefinedTraits(target, traits); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrUndefinedTraits, target.Identity, strings.Join(missing, ", "))
	}

	var members []*model.PlayerRecord
	qi := -1
	for _, r := range t.Records {
		if r.PositionGroup != target.PositionGroup || len(undefinedTraits(r, traits)) > 0 {
			continue
		}
		if r == target {
			qi = len(members)
		}
		members = append(members, r)
	}
	n := len(members)
	if n < 2 {
		return nil, fmt.Errorf("%w: %s has %d usable members", ErrCohortTooSmall, target.PositionGroup, n)
	}

	k := q.Clusters
	if k <= 0 {
		k = e.clusters
	}
	if n < k+1 {
		k = n - 1
	}
	topN := q.TopN
	if topN <= 0 {
		topN = e.topN
	}

	features := make([][]float64, n)
	for i, r := range members {
		row := make([]float64, len(traits))
		for j, tr := range traits {
			row[j], _ = r.Get(tr).Float()
		}
		features[i] = row
	}
	points, err := Project2D(MinMaxScale(features))
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(e.seed))
	labels, inertia := KMeans(points, k, rng, e.restarts, e.maxIter)

	dists := make([]float64, n)
	maxD := 0.0
	for i, p := range points {
		dists[i] = euclid(points[qi], p)
		if dists[i] > maxD {
			maxD = dists[i]
		}
	}

	matches := make([]Match, 0, n-1)
	for i, r := range members {
		if i == qi {
			continue
		}
		matches = append(matches, Match{
			Identity:      r.Identity,
			MainPosition:  r.MainPosition,
			PositionGroup: r.PositionGroup,
			Similarity:    Score(dists[i], maxD),
			Distance:      dists[i],
			Cluster:       labels[i],
		})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Similarity != matches[b].Similarity {
			return matches[a].Similarity > matches[b].Similarity
		}
		return matches[a].Identity.Less(matches[b].Identity)
	})
	if len(matches) > topN {
		matches = matches[:topN]
	}

	log.Debug().Str("player", target.Identity.String()).Str("group", target.PositionGroup).
		Int("cohort", n).Int("k", k).Float64("inertia", inertia).Msg("similarity query")

	return &Result{
		Query:         target.Identity,
		MainPosition:  target.MainPosition,
		PositionGroup: target.PositionGroup,
		Traits:        append([]string(nil), traits...),
		CohortSize:    n,
		Clusters:      k,
		QueryCluster:  labels[qi],
		Inertia:       inertia,
		Matches:       matches,
	}, nil
}

// Score converts a distance to a 0–100 similarity. Every distance scores
// 100 when maxDist is zero.
func Score(dist, maxDist float64) float64 {
	if maxDist == 0 {
		return 100
	}
	return (maxDist - dist) / maxDist * 100
}

func (e *Engine) find(t *model.Table, q Query) (*model.PlayerRecord, error) {
	found := t.Find(q.Name, q.Squad)
	if q.Group != "" {
		kept := found[:0:0]
		for _, r := range found {
			if strings.EqualFold(r.PositionGroup, q.Group) {
				kept = append(kept, r)
			}
		}
		found = kept
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, model.Identity{Name: q.Name, Squad: q.Squad})
	case 1:
		return found[0], nil
	}
	opts := make([]string, len(found))
	for i, r := range found {
		opts[i] = r.Identity.String() + " " + r.PositionGroup
	}
	return nil, fmt.Errorf("%w: %s matches %s", ErrAmbiguousPlayer, q.Name, strings.Join(opts, "; "))
}

func undefinedTraits(r *model.PlayerRecord, traits []string) []string {
	var out []string
	for _, tr := range traits {
		if !r.Get(tr).IsDefined() {
			out = append(out, tr)
		}
	}
	return out
}

func euclid(a, b [2]float64) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}
