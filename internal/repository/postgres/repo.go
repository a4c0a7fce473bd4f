package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/s21platform/chat-server/internal/config"
	"github.com/s21platform/chat-server/internal/model"
)

type key string

const keyTxConn = key("tx_conn")

// executor is satisfied by both *sqlx.DB and *sqlx.Tx.
type executor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type Repository struct {
	connection *sqlx.DB
}

func New(cfg *config.Config) *Repository {
	conStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.Host, cfg.Postgres.Port)

	conn, err := sqlx.Connect("postgres", conStr)
	if err != nil {
		log.Fatal("error connect: ", err)
	}

	return &Repository{
		connection: conn,
	}
}

func (r *Repository) Close() {
	_ = r.connection.Close()
}

// Chk returns the transaction bound to ctx if one is open, otherwise the pool.
func (r *Repository) Chk(ctx context.Context) executor {
	if tx, ok := ctx.Value(keyTxConn).(*sqlx.Tx); ok {
		return tx
	}
	return r.connection
}

// WithTx runs cb inside a transaction carried via context, so every Chk call
// inside cb lands on the same connection.
func (r *Repository) WithTx(ctx context.Context, cb func(ctx context.Context) error) error {
	tx, err := r.connection.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	if err = cb(context.WithValue(ctx, keyTxConn, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string, displayName *string) (*model.User, error) {
	query, args, err := sq.Insert("users").
		Columns("username", "email", "password_hash", "display_name").
		Values(username, email, passwordHash, displayName).
		Suffix("RETURNING id, username, email, password_hash, display_name, avatar_url, created_at, updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var user model.User
	err = r.Chk(ctx).GetContext(ctx, &user, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}

	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getUser(ctx, sq.Eq{"id": id})
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, sq.Eq{"email": email})
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, sq.Eq{"username": username})
}

func (r *Repository) getUser(ctx context.Context, pred sq.Eq) (*model.User, error) {
	query, args, err := sq.
		Select("id", "username", "email", "password_hash", "display_name", "avatar_url", "created_at", "updated_at").
		From("users").
		Where(pred).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var user model.User
	err = r.Chk(ctx).GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}

	return &user, nil
}

func (r *Repository) UpdateUserProfile(ctx context.Context, userID uuid.UUID, displayName, avatarURL *string) error {
	query, args, err := sq.Update("users").
		Set("display_name", sq.Expr("COALESCE(?, display_name)", displayName)).
		Set("avatar_url", sq.Expr("COALESCE(?, avatar_url)", avatarURL)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %v", err)
	}

	return nil
}

func (r *Repository) CreateRoom(ctx context.Context, name string, description *string, isPrivate bool, createdBy uuid.UUID) (*model.Room, error) {
	query, args, err := sq.Insert("rooms").
		Columns("name", "description", "is_private", "created_by").
		Values(name, description, isPrivate, createdBy).
		Suffix("RETURNING id, name, description, is_private, created_by, created_at, updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var room model.Room
	err = r.Chk(ctx).GetContext(ctx, &room, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %v", err)
	}

	return &room, nil
}

func (r *Repository) GetRoom(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	query, args, err := sq.
		Select("id", "name", "description", "is_private", "created_by", "created_at", "updated_at").
		From("rooms").
		Where(sq.Eq{"id": roomID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var room model.Room
	err = r.Chk(ctx).GetContext(ctx, &room, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %v", err)
	}

	return &room, nil
}

func (r *Repository) ListRooms(ctx context.Context, includePrivate bool, limit int32) ([]model.Room, error) {
	queryBuilder := sq.
		Select("id", "name", "description", "is_private", "created_by", "created_at", "updated_at").
		From("rooms").
		OrderBy("created_at DESC")

	if !includePrivate {
		queryBuilder = queryBuilder.Where(sq.Eq{"is_private": false})
	}

	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	} else {
		queryBuilder = queryBuilder.Limit(50)
	}

	query, args, err := queryBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var rooms []model.Room
	err = r.Chk(ctx).SelectContext(ctx, &rooms, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %v", err)
	}

	return rooms, nil
}

func (r *Repository) AddRoomMember(ctx context.Context, roomID, userID uuid.UUID, role string) error {
	query, args, err := sq.Insert("room_members").
		Columns("room_id", "user_id", "role").
		Values(roomID, userID, role).
		Suffix("ON CONFLICT (room_id, user_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to add room member: %v", err)
	}

	return nil
}

func (r *Repository) IsRoomMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	query, args, err := sq.
		Select("COUNT(*) > 0").
		From("room_members").
		Where(sq.And{
			sq.Eq{"room_id": roomID},
			sq.Eq{"user_id": userID},
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build sql query: %v", err)
	}

	var isMember bool
	err = r.Chk(ctx).GetContext(ctx, &isMember, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check room membership: %v", err)
	}

	return isMember, nil
}

func (r *Repository) ListRoomMembers(ctx context.Context, roomID uuid.UUID) ([]model.RoomMember, error) {
	query, args, err := sq.
		Select("room_id", "user_id", "role", "joined_at").
		From("room_members").
		Where(sq.Eq{"room_id": roomID}).
		OrderBy("joined_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var members []model.RoomMember
	err = r.Chk(ctx).SelectContext(ctx, &members, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %v", err)
	}

	return members, nil
}

func (r *Repository) CreateMessage(ctx context.Context, roomID, senderID uuid.UUID, content string) (*model.Message, error) {
	query, args, err := sq.Insert("messages").
		Columns("room_id", "sender_id", "content").
		Values(roomID, senderID, content).
		Suffix("RETURNING id, room_id, sender_id, content, created_at, updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var message model.Message
	err = r.Chk(ctx).GetContext(ctx, &message, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %v", err)
	}

	return &message, nil
}

func (r *Repository) GetMessage(ctx context.Context, messageID uuid.UUID) (*model.Message, error) {
	query, args, err := sq.
		Select("id", "room_id", "sender_id", "content", "created_at", "updated_at").
		From("messages").
		Where(sq.Eq{"id": messageID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var message model.Message
	err = r.Chk(ctx).GetContext(ctx, &message, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %v", err)
	}

	return &message, nil
}

func (r *Repository) ListRoomMessages(ctx context.Context, roomID uuid.UUID, limit, offset int32) (*model.MessageList, error) {
	queryBuilder := sq.
		Select("id", "room_id", "sender_id", "content", "created_at", "updated_at").
		From("messages").
		Where(sq.Eq{"room_id": roomID}).
		OrderBy("created_at DESC").
		Offset(uint64(offset))

	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	} else {
		queryBuilder = queryBuilder.Limit(50)
	}

	query, args, err := queryBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var messages model.MessageList
	err = r.Chk(ctx).SelectContext(ctx, &messages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list room messages: %v", err)
	}

	return &messages, nil
}

func (r *Repository) DeleteMessage(ctx context.Context, messageID uuid.UUID) error {
	query, args, err := sq.Delete("messages").
		Where(sq.Eq{"id": messageID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete message: %v", err)
	}

	return nil
}

func (r *Repository) CreateDirectMessage(ctx context.Context, senderID, recipientID uuid.UUID, content string) (*model.DirectMessage, error) {
	query, args, err := sq.Insert("direct_messages").
		Columns("sender_id", "recipient_id", "content").
		Values(senderID, recipientID, content).
		Suffix("RETURNING id, sender_id, recipient_id, content, is_read, created_at, updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var dm model.DirectMessage
	err = r.Chk(ctx).GetContext(ctx, &dm, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to save direct message: %v", err)
	}

	return &dm, nil
}

func (r *Repository) ListDirectMessages(ctx context.Context, userA, userB uuid.UUID, limit int32) ([]model.DirectMessage, error) {
	query, args, err := sq.
		Select("id", "sender_id", "recipient_id", "content", "is_read", "created_at", "updated_at").
		From("direct_messages").
		Where(sq.Or{
			sq.And{sq.Eq{"sender_id": userA}, sq.Eq{"recipient_id": userB}},
			sq.And{sq.Eq{"sender_id": userB}, sq.Eq{"recipient_id": userA}},
		}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var dms []model.DirectMessage
	err = r.Chk(ctx).SelectContext(ctx, &dms, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list direct messages: %v", err)
	}

	return dms, nil
}

func (r *Repository) MarkDirectMessagesRead(ctx context.Context, senderID, recipientID uuid.UUID) error {
	query, args, err := sq.Update("direct_messages").
		Set("is_read", true).
		Where(sq.And{
			sq.Eq{"sender_id": senderID},
			sq.Eq{"recipient_id": recipientID},
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark direct messages read: %v", err)
	}

	return nil
}
