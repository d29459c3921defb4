package memory

import (
	"fmt"
	"log/slog"

	"github.com/HectorMRC/ithaca/pkg/command"
	"github.com/HectorMRC/ithaca/pkg/domain"
	"github.com/HectorMRC/ithaca/pkg/graph"
	"github.com/HectorMRC/ithaca/pkg/resource"
	"github.com/HectorMRC/ithaca/pkg/schema"
	"github.com/HectorMRC/ithaca/pkg/transaction"
)

// ExperienceNode is a raw experience stored as a node of the repository's
// graph. The record itself lives behind a guarded cell so per-record locks
// outlive the graph access that located them.
type ExperienceNode struct {
	id  domain.ID[domain.Experience]
	res *resource.Resource[domain.RawExperience]
}

// Identity returns the identifier of the stored experience.
func (n ExperienceNode) Identity() domain.ID[domain.Experience] {
	return n.id
}

// Raw returns the guarded raw record.
func (n ExperienceNode) Raw() *resource.Resource[domain.RawExperience] {
	return n.res
}

// BeforeInsertExperience is the contract of triggers running before an
// experience insertion commits.
type BeforeInsertExperience = command.Command[*schema.NodeToInsert[domain.ID[domain.Experience], ExperienceNode]]

// AfterInsertExperience is the contract of triggers running once an
// experience insertion has been performed.
type AfterInsertExperience = command.Command[*schema.InsertedNode[domain.ID[domain.Experience], ExperienceNode]]

// ExperienceRepository stores raw experiences as guarded nodes of a
// schema-wrapped graph, so every create runs through the transactional
// insertion pipeline.
type ExperienceRepository struct {
	entities domain.EntityRepository
	events   domain.EventRepository
	schema   *schema.Schema[domain.ID[domain.Experience], ExperienceNode]
	logger   *slog.Logger
}

// NewExperienceRepository returns an empty experience repository resolving
// its cross-references against the given sibling repositories.
func NewExperienceRepository(entities domain.EntityRepository, events domain.EventRepository) *ExperienceRepository {
	return &ExperienceRepository{
		entities: entities,
		events:   events,
		schema:   schema.New[domain.ID[domain.Experience], ExperienceNode](nil),
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger handed down to the repository's schema and
// resources.
func (r *ExperienceRepository) WithLogger(logger *slog.Logger) *ExperienceRepository {
	if logger != nil {
		r.logger = logger
		r.schema.WithLogger(logger)
	}
	return r
}

// Find returns the transactional handle over the aggregate of the experience
// stored under id.
func (r *ExperienceRepository) Find(id domain.ID[domain.Experience]) (transaction.Tx[domain.Experience], error) {
	var node ExperienceNode
	var found bool
	_ = r.schema.View(func(g *graph.Graph[domain.ID[domain.Experience], ExperienceNode]) error {
		node, found = g.Node(id)
		return nil
	})
	if !found {
		return nil, domain.NotFoundError{Kind: domain.KindExperience, ID: id.String()}
	}
	return r.aggregate(node.res), nil
}

// Filter returns an aggregate handle for every stored experience whose raw
// record matches the filter.
func (r *ExperienceRepository) Filter(filter domain.ExperienceFilter) ([]transaction.Tx[domain.Experience], error) {
	var out []transaction.Tx[domain.Experience]
	_ = r.schema.View(func(g *graph.Graph[domain.ID[domain.Experience], ExperienceNode]) error {
		for _, node := range g.Nodes() {
			matches := false
			_ = node.res.View(func(raw domain.RawExperience) error {
				matches = filter.Matches(raw)
				return nil
			})
			if matches {
				out = append(out, r.aggregate(node.res))
			}
		}
		return nil
	})
	return out, nil
}

// Create inserts the experience through the insertion pipeline with the
// duplicate-identifier check as its only before-trigger.
func (r *ExperienceRepository) Create(experience domain.Experience) error {
	return r.CreateWith(experience, nil, nil)
}

// CreateWith inserts the experience through the insertion pipeline with the
// given extra triggers attached on top of the duplicate-identifier check.
// Before-triggers run newest-first; a failing before-trigger leaves the
// repository untouched, while a failing after-trigger is reported without
// undoing the insertion.
func (r *ExperienceRepository) CreateWith(experience domain.Experience, before []BeforeInsertExperience, after []AfterInsertExperience) error {
	raw := domain.RawFrom(experience)
	if raw.ID.IsZero() {
		return fmt.Errorf("experience identifier must be set")
	}

	node := ExperienceNode{id: raw.ID, res: resource.New(raw).WithLogger(r.logger)}
	insert := schema.NewInsert[domain.ID[domain.Experience]](node)
	for _, cmd := range before {
		insert = insert.Before(cmd)
	}
	// attached last so the cheap duplicate check runs first
	insert = insert.Before(rejectDuplicateExperience())
	for _, cmd := range after {
		insert = insert.After(cmd)
	}
	return insert.Execute(r.schema)
}

// Delete removes the experience stored under id, failing when absent.
func (r *ExperienceRepository) Delete(id domain.ID[domain.Experience]) error {
	if !r.schema.Remove(id) {
		return domain.NotFoundError{Kind: domain.KindExperience, ID: id.String()}
	}
	return nil
}

// Schema exposes the underlying insertion-pipeline schema.
func (r *ExperienceRepository) Schema() *schema.Schema[domain.ID[domain.Experience], ExperienceNode] {
	return r.schema
}

func (r *ExperienceRepository) aggregate(res *resource.Resource[domain.RawExperience]) *ExperienceAggregate {
	return &ExperienceAggregate{
		experience: res,
		entities:   r.entities,
		events:     r.events,
	}
}

// rejectDuplicateExperience aborts the insertion when the candidate's
// identifier is already present in the graph.
func rejectDuplicateExperience() BeforeInsertExperience {
	return command.Func[*schema.NodeToInsert[domain.ID[domain.Experience], ExperienceNode]](
		func(ctx *schema.NodeToInsert[domain.ID[domain.Experience], ExperienceNode]) error {
			id := (*ctx.Node).Identity()
			if ctx.Graph.Contains(id) {
				return domain.AlreadyExistsError{Kind: domain.KindExperience, ID: id.String()}
			}
			return nil
		},
	)
}
