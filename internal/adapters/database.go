package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"github.com/adralidus/lgl-portal/internal/config"
	"github.com/adralidus/lgl-portal/internal/domain"
)

// SchemaVersion describes the current database schema version. It must be incremented if a manual migration is needed.
var SchemaVersion uint64 = 1

// SysStat stores the current database schema version and the timestamp when it was applied.
type SysStat struct {
	MigratedAt    time.Time `gorm:"column:migrated_at"`
	SchemaVersion uint64    `gorm:"primaryKey,column:schema_version"`
}

// GormLogger is a custom logger for Gorm, making it use slog
type GormLogger struct {
	SlowThreshold           time.Duration
	SourceField             string
	IgnoreErrRecordNotFound bool
	Debug                   bool
	Silent                  bool

	prefix string
}

func NewLogger(slowThreshold time.Duration, debug bool) *GormLogger {
	return &GormLogger{
		SlowThreshold:           slowThreshold,
		Debug:                   debug,
		IgnoreErrRecordNotFound: true,
		Silent:                  false,
		SourceField:             "src",
		prefix:                  "GORM-SQL: ",
	}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	l.Silent = level == logger.Silent
	return l
}

func (l *GormLogger) Info(ctx context.Context, s string, args ...any) {
	if l.Silent {
		return
	}
	slog.InfoContext(ctx, l.prefix+s, args...)
}

func (l *GormLogger) Warn(ctx context.Context, s string, args ...any) {
	if l.Silent {
		return
	}
	slog.WarnContext(ctx, l.prefix+s, args...)
}

func (l *GormLogger) Error(ctx context.Context, s string, args ...any) {
	if l.Silent {
		return
	}
	slog.ErrorContext(ctx, l.prefix+s, args...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []any{
		"rows", rows,
		"duration", elapsed,
	}

	if l.SourceField != "" {
		attrs = append(attrs, l.SourceField, utils.FileWithLineNum())
	}

	if err != nil && !(errors.Is(err, gorm.ErrRecordNotFound) && l.IgnoreErrRecordNotFound) {
		attrs = append(attrs, "error", err)
		slog.ErrorContext(ctx, l.prefix+sql, attrs...)
		return
	}

	if l.SlowThreshold != 0 && elapsed > l.SlowThreshold {
		slog.WarnContext(ctx, l.prefix+sql, attrs...)
		return
	}

	if l.Debug {
		slog.DebugContext(ctx, l.prefix+sql, attrs...)
	}
}

// NewDatabase creates a new database connection and returns a Gorm database instance.
func NewDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormDb *gorm.DB
	var err error

	switch cfg.Type {
	case config.DatabaseMySQL:
		gormDb, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
			Logger: NewLogger(cfg.SlowQueryThreshold, cfg.Debug),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w", err)
		}

		sqlDB, _ := gormDb.DB()
		sqlDB.SetConnMaxLifetime(time.Minute * 5)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetMaxOpenConns(10)
		err = sqlDB.Ping() // This DOES open a connection if necessary. This makes sure the database is accessible
		if err != nil {
			return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
		}
	case config.DatabaseMsSQL:
		gormDb, err = gorm.Open(sqlserver.Open(cfg.DSN), &gorm.Config{
			Logger: NewLogger(cfg.SlowQueryThreshold, cfg.Debug),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlserver database: %w", err)
		}
	case config.DatabasePostgres:
		gormDb, err = gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
			Logger: NewLogger(cfg.SlowQueryThreshold, cfg.Debug),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open Postgres database: %w", err)
		}
	case config.DatabaseSQLite:
		if _, err = os.Stat(filepath.Dir(cfg.DSN)); os.IsNotExist(err) {
			if err = os.MkdirAll(filepath.Dir(cfg.DSN), 0700); err != nil {
				return nil, fmt.Errorf("failed to create database base directory: %w", err)
			}
		}
		gormDb, err = gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
			Logger:                                   NewLogger(cfg.SlowQueryThreshold, cfg.Debug),
			DisableForeignKeyConstraintWhenMigrating: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, _ := gormDb.DB()
		sqlDB.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	return gormDb, nil
}

// SqlRepo is a SQL database repository implementation.
// Currently, it supports MySQL, SQLite, Microsoft SQL and Postgresql database systems.
type SqlRepo struct {
	db *gorm.DB
}

// NewSqlRepository creates a new SqlRepo instance.
func NewSqlRepository(db *gorm.DB) (*SqlRepo, error) {
	repo := &SqlRepo{
		db: db,
	}

	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

func (r *SqlRepo) migrate() error {
	slog.Debug("running migration: sys-stat", "result", r.db.AutoMigrate(&SysStat{}))
	slog.Debug("running migration: user", "result", r.db.AutoMigrate(&domain.User{}))
	slog.Debug("running migration: notification", "result", r.db.AutoMigrate(&domain.Notification{}))
	slog.Debug("running migration: session", "result", r.db.AutoMigrate(&domain.Session{}))
	slog.Debug("running migration: audit data", "result", r.db.AutoMigrate(&domain.AuditEntry{}))

	existingSysStat := SysStat{}
	r.db.Where("schema_version = ?", SchemaVersion).First(&existingSysStat)
	if existingSysStat.SchemaVersion == 0 {
		sysStat := SysStat{
			MigratedAt:    time.Now(),
			SchemaVersion: SchemaVersion,
		}
		if err := r.db.Create(&sysStat).Error; err != nil {
			return fmt.Errorf("failed to write sysstat entry for schema version %d: %w", SchemaVersion, err)
		}
		slog.Debug("sys-stat entry written", "schema_version", SchemaVersion)
	}

	return nil
}

// region notifications

// GetNotification returns the notification with the given id.
// If no notification is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetNotification(ctx context.Context, id domain.NotificationIdentifier) (
	*domain.Notification,
	error,
) {
	var notification domain.Notification

	err := r.db.WithContext(ctx).First(&notification, "identifier = ?", id).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &notification, nil
}

// GetAllNotifications returns all notifications, ordered by creation time, newest first.
// The fetch order is the tie-break order for all client-side sorting.
func (r *SqlRepo) GetAllNotifications(ctx context.Context) ([]domain.Notification, error) {
	var notifications []domain.Notification

	err := r.db.WithContext(ctx).Order("created_at desc").Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

// FindNotifications returns notifications matching the pushed-down predicates:
// a creation time window and an exact type. Both are optional.
// Search and priority filtering happens client-side, priority is a derived field.
func (r *SqlRepo) FindNotifications(
	ctx context.Context,
	since time.Time,
	notificationType domain.NotificationType,
) ([]domain.Notification, error) {
	var notifications []domain.Notification

	tx := r.db.WithContext(ctx).Order("created_at desc")
	if !since.IsZero() {
		tx = tx.Where("created_at >= ?", since)
	}
	if notificationType != "" {
		tx = tx.Where("notification_type = ?", notificationType)
	}

	err := tx.Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

// SaveNotification updates the notification with the given id.
// If no notification is found, a new record is created.
func (r *SqlRepo) SaveNotification(
	ctx context.Context,
	id domain.NotificationIdentifier,
	updateFunc func(n *domain.Notification) (*domain.Notification, error),
) error {
	userInfo := domain.GetUserInfo(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		notification, err := r.getOrCreateNotification(userInfo, tx, id)
		if err != nil {
			return err // return any error will roll back
		}

		notification, err = updateFunc(notification)
		if err != nil {
			return err
		}

		notification.UpdatedBy = userInfo.UserId()
		notification.UpdatedAt = time.Now()

		// return nil will commit the whole transaction
		return tx.Save(notification).Error
	})
	if err != nil {
		return err
	}

	return nil
}

func (r *SqlRepo) getOrCreateNotification(
	ui *domain.ContextUserInfo,
	tx *gorm.DB,
	id domain.NotificationIdentifier,
) (*domain.Notification, error) {
	var notification domain.Notification

	// notificationDefaults will be applied to newly created records
	notificationDefaults := domain.Notification{
		BaseModel: domain.BaseModel{
			CreatedBy: ui.UserId(),
			UpdatedBy: ui.UserId(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Identifier: id,
	}

	err := tx.Attrs(notificationDefaults).FirstOrCreate(&notification, "identifier = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &notification, nil
}

// DeleteNotification deletes the notification with the given id.
func (r *SqlRepo) DeleteNotification(ctx context.Context, id domain.NotificationIdentifier) error {
	err := r.db.WithContext(ctx).Unscoped().
		Delete(&domain.Notification{Identifier: id}).Error
	if err != nil {
		return err
	}

	return nil
}

// SetNotificationsRead marks all given notifications as read in a single transaction.
// Either all ids are updated or none.
func (r *SqlRepo) SetNotificationsRead(ctx context.Context, ids []domain.NotificationIdentifier) error {
	if len(ids) == 0 {
		return nil
	}

	userInfo := domain.GetUserInfo(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&domain.Notification{}).
			Where("identifier IN ?", ids).
			Updates(map[string]any{
				"is_read":    true,
				"updated_by": userInfo.UserId(),
				"updated_at": time.Now(),
			}).Error
	})
}

// DeleteNotifications deletes all given notifications in a single transaction.
// Either all ids are removed or none.
func (r *SqlRepo) DeleteNotifications(ctx context.Context, ids []domain.NotificationIdentifier) error {
	if len(ids) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Unscoped().Where("identifier IN ?", ids).Delete(&domain.Notification{}).Error
	})
}

// endregion notifications

// region sessions

// GetSession returns the session with the given id.
// If no session is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetSession(ctx context.Context, id domain.SessionIdentifier) (*domain.Session, error) {
	var session domain.Session

	err := r.db.WithContext(ctx).First(&session, "identifier = ?", id).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// GetAllSessions returns all sessions, ordered by creation time, newest first.
func (r *SqlRepo) GetAllSessions(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session

	err := r.db.WithContext(ctx).Order("created_at desc").Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// GetUserSessions returns all sessions of the given user, newest first.
func (r *SqlRepo) GetUserSessions(ctx context.Context, id domain.UserIdentifier) ([]domain.Session, error) {
	var sessions []domain.Session

	err := r.db.WithContext(ctx).Where("user_identifier = ?", id).
		Order("created_at desc").Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// SaveSession updates the session with the given id.
// If no session is found, a new record is created.
func (r *SqlRepo) SaveSession(
	ctx context.Context,
	id domain.SessionIdentifier,
	updateFunc func(s *domain.Session) (*domain.Session, error),
) error {
	userInfo := domain.GetUserInfo(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := r.getOrCreateSession(userInfo, tx, id)
		if err != nil {
			return err
		}

		session, err = updateFunc(session)
		if err != nil {
			return err
		}

		session.UpdatedBy = userInfo.UserId()
		session.UpdatedAt = time.Now()

		return tx.Save(session).Error
	})
	if err != nil {
		return err
	}

	return nil
}

func (r *SqlRepo) getOrCreateSession(
	ui *domain.ContextUserInfo,
	tx *gorm.DB,
	id domain.SessionIdentifier,
) (*domain.Session, error) {
	var session domain.Session

	sessionDefaults := domain.Session{
		BaseModel: domain.BaseModel{
			CreatedBy: ui.UserId(),
			UpdatedBy: ui.UserId(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Identifier: id,
	}

	err := tx.Attrs(sessionDefaults).FirstOrCreate(&session, "identifier = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// TerminateAllSessions deactivates every currently active session in a single
// transaction and returns the number of terminated sessions.
func (r *SqlRepo) TerminateAllSessions(ctx context.Context) (int, error) {
	userInfo := domain.GetUserInfo(ctx)

	var terminated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Session{}).
			Where("is_active = ?", true).
			Updates(map[string]any{
				"is_active":  false,
				"updated_by": userInfo.UserId(),
				"updated_at": time.Now(),
			})
		terminated = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, err
	}

	return int(terminated), nil
}

// TerminateUserSessions deactivates all active sessions of the given user.
func (r *SqlRepo) TerminateUserSessions(ctx context.Context, id domain.UserIdentifier) (int, error) {
	userInfo := domain.GetUserInfo(ctx)

	var terminated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Session{}).
			Where("user_identifier = ? AND is_active = ?", id, true).
			Updates(map[string]any{
				"is_active":  false,
				"updated_by": userInfo.UserId(),
				"updated_at": time.Now(),
			})
		terminated = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, err
	}

	return int(terminated), nil
}

// endregion sessions

// region users

// GetUser returns the user with the given id.
// If no user is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetUser(ctx context.Context, id domain.UserIdentifier) (*domain.User, error) {
	var user domain.User

	err := r.db.WithContext(ctx).First(&user, "identifier = ?", id).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByUsername returns the user with the given username.
// If no user is found, an error domain.ErrNotFound is returned.
// If multiple users are found, an error domain.ErrNotUnique is returned.
func (r *SqlRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var users []domain.User

	err := r.db.WithContext(ctx).Where("username = ?", username).Find(&users).Error
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, domain.ErrNotFound
	}

	if len(users) > 1 {
		return nil, fmt.Errorf("found multiple users with username %s: %w", username, domain.ErrNotUnique)
	}

	user := users[0]

	return &user, nil
}

// GetUserByEmail returns the user with the given email.
// If no user is found, an error domain.ErrNotFound is returned.
// If multiple users are found, an error domain.ErrNotUnique is returned.
func (r *SqlRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var users []domain.User

	err := r.db.WithContext(ctx).Where("email = ?", email).Find(&users).Error
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, domain.ErrNotFound
	}

	if len(users) > 1 {
		return nil, fmt.Errorf("found multiple users with email %s: %w", email, domain.ErrNotUnique)
	}

	user := users[0]

	return &user, nil
}

// GetAllUsers returns all users.
func (r *SqlRepo) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	err := r.db.WithContext(ctx).Order("created_at desc").Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// FindUsers returns all users that match the given search string.
// The search string is matched against the user identifier, username, firstname, lastname and email.
func (r *SqlRepo) FindUsers(ctx context.Context, search string) ([]domain.User, error) {
	var users []domain.User

	searchValue := "%" + strings.ToLower(search) + "%"
	err := r.db.WithContext(ctx).
		Where("identifier LIKE ?", searchValue).
		Or("username LIKE ?", searchValue).
		Or("firstname LIKE ?", searchValue).
		Or("lastname LIKE ?", searchValue).
		Or("email LIKE ?", searchValue).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// SaveUser updates the user with the given id.
// If no user is found, a new user is created.
func (r *SqlRepo) SaveUser(
	ctx context.Context,
	id domain.UserIdentifier,
	updateFunc func(u *domain.User) (*domain.User, error),
) error {
	userInfo := domain.GetUserInfo(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := r.getOrCreateUser(userInfo, tx, id)
		if err != nil {
			return err
		}

		user, err = updateFunc(user)
		if err != nil {
			return err
		}

		user.UpdatedBy = userInfo.UserId()
		user.UpdatedAt = time.Now()

		return tx.Save(user).Error
	})
	if err != nil {
		return err
	}

	return nil
}

// DeleteUser deletes the user with the given id.
func (r *SqlRepo) DeleteUser(ctx context.Context, id domain.UserIdentifier) error {
	err := r.db.WithContext(ctx).Unscoped().Delete(&domain.User{Identifier: id}).Error
	if err != nil {
		return err
	}

	return nil
}

func (r *SqlRepo) getOrCreateUser(ui *domain.ContextUserInfo, tx *gorm.DB, id domain.UserIdentifier) (
	*domain.User,
	error,
) {
	var user domain.User

	// userDefaults will be applied to newly created user records
	userDefaults := domain.User{
		BaseModel: domain.BaseModel{
			CreatedBy: ui.UserId(),
			UpdatedBy: ui.UserId(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Identifier: id,
		Role:       domain.UserRoleStudent,
	}

	err := tx.Attrs(userDefaults).FirstOrCreate(&user, "identifier = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// endregion users

// region audit

// SaveAuditEntry appends an audit entry. Entries are write-once, the repository
// offers no update or delete operations for them.
func (r *SqlRepo) SaveAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if err != nil {
		return err
	}

	return nil
}

// GetAllAuditEntries retrieves all audit entries from the database.
// The entries are ordered by timestamp, with the newest entries first.
func (r *SqlRepo) GetAllAuditEntries(ctx context.Context) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry

	err := r.db.WithContext(ctx).Order("created_at desc, id desc").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// FindAuditEntries retrieves audit entries, newest first, optionally restricted
// to a creation time window and an action verb.
func (r *SqlRepo) FindAuditEntries(ctx context.Context, since time.Time, action string) (
	[]domain.AuditEntry,
	error,
) {
	var entries []domain.AuditEntry

	tx := r.db.WithContext(ctx).Order("created_at desc, id desc")
	if !since.IsZero() {
		tx = tx.Where("created_at >= ?", since)
	}
	if action != "" {
		tx = tx.Where("action = ?", action)
	}

	err := tx.Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// endregion audit
