package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ListRecords returns every stored document of a resource ordered by identifier.
func (s *StudentDB) ListRecords(ctx context.Context, resource string) ([]json.RawMessage, error) {
	query := `SELECT payload FROM eedm_resources WHERE resource = $1 ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, resource)
	if err != nil {
		return nil, fmt.Errorf("error retrieving %s: %w", resource, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", resource, err)
		}
		records = append(records, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", resource, err)
	}
	return records, nil
}

// GetRecord returns a single document, or nil when it does not exist.
func (s *StudentDB) GetRecord(ctx context.Context, resource, id string) (json.RawMessage, error) {
	query := `SELECT payload FROM eedm_resources WHERE resource = $1 AND id = $2`

	var payload []byte
	err := s.DB.QueryRowContext(ctx, query, resource, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving %s %s: %w", resource, id, err)
	}
	return json.RawMessage(payload), nil
}

// UpsertRecord inserts or replaces a document.
func (s *StudentDB) UpsertRecord(ctx context.Context, resource, id string, payload json.RawMessage) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = s.execQuery(ctx, tx, `
		INSERT INTO eedm_resources (resource, id, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (resource, id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		resource, id, []byte(payload), time.Now().UTC())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error upserting %s %s: %w", resource, id, err)
	}

	if err := s.CommitTransaction(tx); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// DeleteRecord removes a document and its extended data.
func (s *StudentDB) DeleteRecord(ctx context.Context, resource, id string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = s.execQuery(ctx, tx, `DELETE FROM eedm_resources WHERE resource = $1 AND id = $2`, resource, id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error executing delete query: %w", err)
	}

	if err := s.CommitTransaction(tx); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// PrivacyRule hides a property of a resource from callers missing Permission.
type PrivacyRule struct {
	Resource   string `yaml:"resource"`
	Property   string `yaml:"property"`
	Permission string `yaml:"permission"`
}

// GetPrivacyRules returns the data-privacy rules configured for a resource.
func (s *StudentDB) GetPrivacyRules(ctx context.Context, resource string) ([]PrivacyRule, error) {
	query := `SELECT resource, property, permission FROM data_privacy_rules WHERE resource = $1 ORDER BY property`
	rows, err := s.DB.QueryContext(ctx, query, resource)
	if err != nil {
		return nil, fmt.Errorf("error retrieving privacy rules: %w", err)
	}
	defer rows.Close()

	var rules []PrivacyRule
	for rows.Next() {
		var rule PrivacyRule
		if err := rows.Scan(&rule.Resource, &rule.Property, &rule.Permission); err != nil {
			return nil, fmt.Errorf("error scanning privacy rules: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// UpsertPrivacyRule creates or replaces a privacy rule.
func (s *StudentDB) UpsertPrivacyRule(ctx context.Context, rule PrivacyRule) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = s.execQuery(ctx, tx, `
		INSERT INTO data_privacy_rules (resource, property, permission)
		VALUES ($1, $2, $3)
		ON CONFLICT (resource, property) DO UPDATE SET permission = EXCLUDED.permission`,
		rule.Resource, rule.Property, rule.Permission)
	if err != nil {
		tx.Rollback()
		return err
	}

	return s.CommitTransaction(tx)
}

// GetExtendedData returns the extension properties of the given records keyed
// by record identifier then property name.
func (s *StudentDB) GetExtendedData(ctx context.Context, resource string, ids []string) (map[string]map[string]json.RawMessage, error) {
	out := make(map[string]map[string]json.RawMessage)
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT id, property, value FROM extended_data WHERE resource = $1 AND id = ANY($2)`
	rows, err := s.DB.QueryContext(ctx, query, resource, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error retrieving extended data: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, property string
		var value []byte
		if err := rows.Scan(&id, &property, &value); err != nil {
			return nil, fmt.Errorf("error scanning extended data: %w", err)
		}
		if out[id] == nil {
			out[id] = make(map[string]json.RawMessage)
		}
		out[id][property] = json.RawMessage(value)
	}
	return out, rows.Err()
}

// UpsertExtendedData sets one extension property on a record.
func (s *StudentDB) UpsertExtendedData(ctx context.Context, resource, id, property string, value json.RawMessage) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = s.execQuery(ctx, tx, `
		INSERT INTO extended_data (resource, id, property, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (resource, id, property) DO UPDATE SET value = EXCLUDED.value`,
		resource, id, property, []byte(value))
	if err != nil {
		tx.Rollback()
		return err
	}

	return s.CommitTransaction(tx)
}
