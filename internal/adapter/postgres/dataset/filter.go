package dataset

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/spendview/catalog-backend/internal/domain"
)

// psql builds statements with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// facetExistsSQL constrains the outer datasets alias "d" to rows carrying
// at least one of the selected codes for a dimension (intra-dimension OR).
// One EXISTS per dimension gives the inter-dimension AND.
const facetExistsSQL = `EXISTS (
	SELECT 1 FROM dataset_facets df
	WHERE df.dataset_id = d.id AND df.dimension = ? AND df.code = ANY(?)
)`

// applyQuery appends the predicates for qs to a builder selecting from
// "datasets d": public datasets only, case-insensitive substring match of
// the text term over label and description, and the filter selection as a
// conjunction across dimensions.
func applyQuery(b sq.SelectBuilder, qs domain.QueryState) sq.SelectBuilder {
	b = b.Where(sq.Eq{"d.private": false})

	if qs.HasTerm() {
		pattern := "%" + escapeLike(domain.NormalizeText(qs.Term())) + "%"
		b = b.Where(sq.Or{
			sq.ILike{"d.label": pattern},
			sq.ILike{"d.description": pattern},
		})
	}

	for _, dim := range qs.Dimensions() {
		b = b.Where(facetExistsSQL, dim, qs.Codes(dim))
	}

	return b
}

// applyOrder appends the result ordering: trigram relevance descending when
// a text term is present, label ascending as the stable tie-break either way.
func applyOrder(b sq.SelectBuilder, qs domain.QueryState) sq.SelectBuilder {
	if qs.HasTerm() {
		b = b.OrderByClause("similarity(d.label, ?) DESC", domain.NormalizeText(qs.Term()))
	}
	return b.OrderBy("d.label ASC", "d.id ASC")
}

// escapeLike escapes LIKE metacharacters in user input so the term is
// matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
