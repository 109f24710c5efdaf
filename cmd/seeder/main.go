package main

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pviana/futmatch/internal/invite"
	"github.com/pviana/futmatch/internal/ledger"
	"github.com/pviana/futmatch/internal/match"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

var sports = []string{"futebol", "futsal", "society"}

var statuses = []match.MatchStatus{
	match.StatusOpen,
	match.StatusConfirmed,
	match.StatusFinished,
}

// seedPlayers ensures n dummy profiles with starting balances and returns
// their ids. The timestamp columns are NOT NULL without defaults, so they
// must be supplied here.
func seedPlayers(db *sql.DB, n int) ([]string, error) {
	now := time.Now().Unix()
	playerIDs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := uuid.NewString()
		name := fmt.Sprintf("Seeder Player %d", i+1)
		res, err := db.Exec("INSERT OR IGNORE INTO profiles (id, name, created_at) VALUES (?, ?, ?)", id, name, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert dummy player %s: %w", name, err)
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return nil, fmt.Errorf("profile insert for %s was silently ignored", name)
		}
		if _, err := db.Exec("INSERT OR IGNORE INTO tokens (user_id, balance, updated_at) VALUES (?, ?, ?)", id, ledger.InitialBalance, now); err != nil {
			return nil, fmt.Errorf("failed to seed balance for %s: %w", name, err)
		}
		playerIDs = append(playerIDs, id)
	}
	return playerIDs, nil
}

// seedMatches inserts numMatches dummy matches owned by the given players,
// batchSize rows per INSERT.
func seedMatches(db *sql.DB, playerIDs []string, numMatches, batchSize int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*15) // 15 columns per match

	for i := 0; i < numMatches; i++ {
		// Spread matches across the past and the coming month
		matchTime := time.Now().Add(time.Duration(rand.Intn(60*24)-30*24) * time.Hour)
		status := statuses[rand.Intn(len(statuses))]
		if matchTime.After(time.Now()) && status == match.StatusFinished {
			status = match.StatusOpen
		}

		isPrivate := rand.Intn(10) == 0
		var inviteCode interface{}
		if isPrivate {
			code, err := invite.NewCode()
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to generate invite code: %w", err)
			}
			inviteCode = code
		}

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			playerIDs[rand.Intn(len(playerIDs))],
			fmt.Sprintf("Pelada Seeder %d", i+1),
			sports[rand.Intn(len(sports))],
			"Quadra Seeder",
			nil, // lat
			nil, // lng
			matchTime.Unix(),
			10+rand.Intn(5),
			0,
			"",
			status,
			boolToInt(isPrivate),
			inviteCode,
			nil, // team_id
			time.Now().Unix(),
		)

		if (i+1)%batchSize == 0 || (i+1) == numMatches {
			stmt := fmt.Sprintf(`
				INSERT INTO matches (created_by, name, sport, location, lat, lng, date, slots,
					filled_slots, rules, status, is_private, invite_code, team_id, created_at)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to execute batch insert: %w", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*15)
			log.Info("Inserted batch", "completed", i+1, "total", numMatches)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	// A dangling created_by must fail loudly, not land silently.
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		log.Fatalf("Failed to enable foreign keys: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	playerIDs, err := seedPlayers(db, 20)
	if err != nil {
		log.Fatalf("Failed to seed players: %s", err)
	}
	log.Info("Ensured dummy players exist.", "count", len(playerIDs))

	const batchSize = 100 // Insert 100 matches at a time
	const numMatches = 5000

	log.Info("Preparing to insert dummy matches...", "total", numMatches, "batch_size", batchSize)
	startTime := time.Now()

	if err := seedMatches(db, playerIDs, numMatches, batchSize); err != nil {
		log.Fatalf("Failed to seed matches: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy matches.", "duration", duration)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
