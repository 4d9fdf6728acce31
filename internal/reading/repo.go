// Package reading keeps the history of computed charts per owner.
package reading

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ziwei/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, rd *models.Reading) error {
	input, err := json.Marshal(rd.Input)
	if err != nil {
		return fmt.Errorf("encode reading input: %w", err)
	}
	if rd.CreatedAt.IsZero() {
		rd.CreatedAt = time.Now().UTC()
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO readings (id, owner, input_json, soul_stars, five_elements_class, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rd.ID, rd.Owner, string(input), strings.Join(rd.SoulStars, ","), rd.FiveElementsClass, rd.CreatedAt)
	if err != nil {
		return fmt.Errorf("create reading: %w", err)
	}
	return nil
}

// List returns the owner's readings, newest first, and the total count.
func (r *Repo) List(ctx context.Context, owner string, limit, offset int) ([]models.Reading, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM readings WHERE owner = ?
	`, owner).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count readings: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, owner, input_json, soul_stars, five_elements_class, created_at
		FROM readings
		WHERE owner = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, owner, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Reading, 0, limit)
	for rows.Next() {
		rd, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rd)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, owner, id string) (*models.Reading, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, owner, input_json, soul_stars, five_elements_class, created_at
		FROM readings
		WHERE owner = ? AND id = ?
	`, owner, id)
	rd, err := scan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rd, err
}

func (r *Repo) Delete(ctx context.Context, owner, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM readings
		WHERE owner = ? AND id = ?
	`, owner, id)
	if err != nil {
		return false, fmt.Errorf("delete reading: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Reassign moves a visitor's history to an account after sign-in.
func (r *Repo) Reassign(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	if _, err := r.DB.ExecContext(ctx, `
		UPDATE readings SET owner = ? WHERE owner = ?
	`, to, from); err != nil {
		return fmt.Errorf("reassign readings: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Reading, error) {
	var (
		rd    models.Reading
		input string
		soul  string
	)
	if err := s.Scan(&rd.ID, &rd.Owner, &input, &soul, &rd.FiveElementsClass, &rd.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan reading: %w", err)
	}
	if err := json.Unmarshal([]byte(input), &rd.Input); err != nil {
		return nil, fmt.Errorf("decode reading input: %w", err)
	}
	if soul != "" {
		rd.SoulStars = strings.Split(soul, ",")
	}
	return &rd, nil
}
