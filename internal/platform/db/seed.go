package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"timeclock/internal/domain/auth"
	"timeclock/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}

	if cfg.Environment == "development" {
		if err := ensureDemoData(ctx, pool); err != nil {
			return err
		}
	}

	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id
  `, email, hash, auth.RoleAdmin).Scan(&id)
}

func ensureDemoData(ctx context.Context, pool *pgxpool.Pool) error {
	var geofenceID string
	err := pool.QueryRow(ctx, "SELECT id FROM geofences WHERE name = $1", "Head Office").Scan(&geofenceID)
	if err != nil {
		if err := pool.QueryRow(ctx, `
      INSERT INTO geofences (name, center_lat, center_lon, radius_m)
      VALUES ($1, $2, $3, $4)
      RETURNING id
    `, "Head Office", 40.0, -74.0, 150.0).Scan(&geofenceID); err != nil {
			return err
		}
	}

	var employeeID string
	err = pool.QueryRow(ctx, "SELECT id FROM employees WHERE name = $1", "Demo Employee").Scan(&employeeID)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword("Employee123!")
	if err != nil {
		return err
	}

	var userID string
	if err := pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id
  `, "employee@example.com", hash, auth.RoleEmployee).Scan(&userID); err != nil {
		return err
	}

	return pool.QueryRow(ctx, `
    INSERT INTO employees (user_id, name, geofence_id) VALUES ($1, $2, $3) RETURNING id
  `, userID, "Demo Employee", geofenceID).Scan(&employeeID)
}
