package store

import (
	"strings"
	"time"

	"github.com/lox/aqidash/internal/models"
)

// clause is one filter predicate compiled to SQL. Clauses are ANDed; the
// conjunction is commutative, so compilation order never affects results.
type clause struct {
	expr string
	args []any
}

// compileCriteria turns filter criteria into predicate clauses, skipping any
// criterion that is absent. The pollutant predicate only applies when the
// dataset carries a pollutant column.
func compileCriteria(c models.Criteria, hasPollutant bool) []clause {
	var clauses []clause

	if c.Start != nil {
		clauses = append(clauses, clause{"date >= ?", []any{c.Start.Format(dateLayout)}})
	}
	if c.End != nil {
		clauses = append(clauses, clause{"date <= ?", []any{c.End.Format(dateLayout)}})
	}
	if len(c.Cities) > 0 {
		clauses = append(clauses, inClause("city", c.Cities))
	}
	if hasPollutant && len(c.Pollutants) > 0 {
		clauses = append(clauses, inClause("pollutant", c.Pollutants))
	}
	if c.MinAQI != nil {
		clauses = append(clauses, clause{"aqi >= ?", []any{*c.MinAQI}})
	}
	if c.MaxAQI != nil {
		clauses = append(clauses, clause{"aqi <= ?", []any{*c.MaxAQI}})
	}

	return clauses
}

func inClause(column string, values []string) clause {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return clause{column + " IN (" + placeholders + ")", args}
}

// whereSQL renders clauses into a WHERE fragment (empty string when no
// predicate is active) and the flattened argument list.
func whereSQL(clauses []clause) (string, []any) {
	if len(clauses) == 0 {
		return "", nil
	}
	exprs := make([]string, len(clauses))
	var args []any
	for i, cl := range clauses {
		exprs[i] = cl.expr
		args = append(args, cl.args...)
	}
	return " WHERE " + strings.Join(exprs, " AND "), args
}

func (s *Store) criteriaWhere(c models.Criteria) (string, []any, error) {
	hasPollutant := false
	if info, err := s.DatasetInfo(); err != nil {
		return "", nil, err
	} else if info != nil {
		hasPollutant = info.HasPollutant
	}
	where, args := whereSQL(compileCriteria(c, hasPollutant))
	return where, args, nil
}

// FilterRecords returns the records matching the criteria in insertion
// order. An empty result is a valid empty dataset, never an error.
func (s *Store) FilterRecords(c models.Criteria) ([]models.Record, error) {
	where, args, err := s.criteriaWhere(c)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT date, city, COALESCE(pollutant, ''), aqi FROM records"+where+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var dateStr string
		var rec models.Record
		if err := rows.Scan(&dateStr, &rec.City, &rec.Pollutant, &rec.AQI); err != nil {
			return nil, err
		}
		rec.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FilteredDataset wraps FilterRecords as a Dataset for re-serialization.
func (s *Store) FilteredDataset(c models.Criteria) (*models.Dataset, error) {
	records, err := s.FilterRecords(c)
	if err != nil {
		return nil, err
	}
	hasPollutant := false
	if info, err := s.DatasetInfo(); err != nil {
		return nil, err
	} else if info != nil {
		hasPollutant = info.HasPollutant
	}
	return &models.Dataset{Records: records, HasPollutant: hasPollutant}, nil
}
