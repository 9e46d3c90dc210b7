// Package store provides PostgreSQL persistence for conversation transcripts
// and state snapshots. Storage is optional: the chat loop runs fine without a
// database, it just loses replayability.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-chat-agent/internal/types"
)

// Store wraps a PostgreSQL connection pool
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Conversation is one stored chat session.
type Conversation struct {
	ID        uuid.UUID  `json:"id"`
	JDSummary string     `json:"jd_summary"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// CreateConversation creates a new conversation record and returns its ID
func (s *Store) CreateConversation(ctx context.Context, jdSummary string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (jd_summary, status)
		 VALUES ($1, 'active')
		 RETURNING id`,
		jdSummary,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return id, nil
}

// EndConversation marks a conversation as finished
func (s *Store) EndConversation(ctx context.Context, conversationID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE conversations SET status = 'ended', ended_at = NOW() WHERE id = $1`,
		conversationID,
	)
	if err != nil {
		return fmt.Errorf("failed to end conversation: %w", err)
	}
	return nil
}

// SaveMessage appends one transcript message for a conversation
func (s *Store) SaveMessage(ctx context.Context, conversationID uuid.UUID, msg types.Message) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (conversation_id, message_id, role, content, sent_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (message_id) DO NOTHING`,
		conversationID, msg.ID, string(msg.Role), msg.Content, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save message %s: %w", msg.ID, err)
	}
	return nil
}

// SaveSnapshot upserts the latest full state snapshot for a conversation
func (s *Store) SaveSnapshot(ctx context.Context, conversationID uuid.UUID, state *types.ConversationState) error {
	jsonBytes, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO state_snapshots (conversation_id, state)
		 VALUES ($1, $2)
		 ON CONFLICT (conversation_id) DO UPDATE SET state = $2, updated_at = NOW()`,
		conversationID, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save state snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot retrieves the latest state snapshot, or nil if none exists
func (s *Store) LoadSnapshot(ctx context.Context, conversationID uuid.UUID) (*types.ConversationState, error) {
	var jsonBytes []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM state_snapshots WHERE conversation_id = $1`,
		conversationID,
	).Scan(&jsonBytes)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load state snapshot: %w", err)
	}

	var state types.ConversationState
	if err := json.Unmarshal(jsonBytes, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state snapshot: %w", err)
	}
	state.EnsureMaps()
	return &state, nil
}

// ListConversations retrieves recent conversations
func (s *Store) ListConversations(ctx context.Context, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, jd_summary, status, created_at, ended_at
		 FROM conversations ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.JDSummary, &c.Status, &c.CreatedAt, &c.EndedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}

// GetMessages retrieves a conversation's transcript in send order
func (s *Store) GetMessages(ctx context.Context, conversationID uuid.UUID) ([]types.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT message_id, role, content, sent_at
		 FROM messages WHERE conversation_id = $1 ORDER BY sent_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []types.Message
	for rows.Next() {
		var m types.Message
		var role string
		if err := rows.Scan(&m.ID, &role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = types.Role(role)
		messages = append(messages, m)
	}
	return messages, nil
}
