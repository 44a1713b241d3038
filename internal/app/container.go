// Package app wires configuration, stores and services into one Container that
// main builds once and hands to the router.
package app

import (
	"errors"
	"fmt"
	"time"

	"seyyar/internal/catalog"
	"seyyar/internal/config"
	domainCar "seyyar/internal/domain/car"
	domainReservation "seyyar/internal/domain/reservation"
	domainUser "seyyar/internal/domain/user"
	"seyyar/internal/events"
	"seyyar/internal/infrastructure/database/memory"
	"seyyar/internal/infrastructure/database/postgres"
	"seyyar/internal/infrastructure/mail"
	"seyyar/internal/infrastructure/storage"
	"seyyar/internal/logger"
	"seyyar/internal/usecase/car"
	"seyyar/internal/usecase/reservation"
	"seyyar/internal/usecase/user"
	"seyyar/pkg/mqtt"

	"go.uber.org/zap"
)

type Container struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Blobs   *storage.BlobStore

	UserService        *user.Service
	CarService         *car.Service
	ReservationService *reservation.Service

	health  func() error
	closers []func() error
}

// Options replaces the outbound adapters chosen from configuration.
type Options struct {
	Mailer    user.Mailer
	Publisher events.Publisher
	Blobs     *storage.BlobStore
}

type repositories struct {
	identities    domainUser.IdentityRepository
	users         domainUser.Repository
	refreshTokens domainUser.RefreshTokenRepository
	cars          domainCar.Repository
	reservations  domainReservation.Repository
}

func New(cfg *config.Config) (*Container, error) {
	return NewWithOptions(cfg, Options{})
}

func NewWithOptions(cfg *config.Config, opts Options) (*Container, error) {
	c := &Container{Config: cfg, health: func() error { return nil }}

	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	c.Catalog = cat

	repos, err := c.openStore()
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Blobs = opts.Blobs
	if c.Blobs == nil {
		if c.Blobs, err = storage.NewBlobStore(cfg); err != nil {
			c.Close()
			return nil, err
		}
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = c.newMailer()
	}

	publisher := opts.Publisher
	if publisher == nil {
		if publisher, err = c.newPublisher(); err != nil {
			c.Close()
			return nil, err
		}
	}

	c.UserService = user.NewService(repos.identities, repos.users, repos.refreshTokens, mailer, cfg)
	c.CarService = car.NewService(repos.cars, repos.users, repos.reservations, c.Blobs, cat, publisher)
	c.ReservationService = reservation.NewService(repos.reservations, repos.cars, repos.users, publisher)

	return c, nil
}

func (c *Container) openStore() (*repositories, error) {
	switch c.Config.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			identities:    memory.NewIdentityRepository(store),
			users:         memory.NewUserRepository(store),
			refreshTokens: memory.NewRefreshTokenRepository(store),
			cars:          memory.NewCarRepository(store),
			reservations:  memory.NewReservationRepository(store),
		}, nil

	case config.StoreDriverPostgres:
		db, err := postgres.NewDB(c.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.closers = append(c.closers, db.Close)
		c.health = db.Health

		if c.Config.Store.MigrationsRun {
			if err := db.RunMigrations(); err != nil {
				return nil, err
			}
		}

		return &repositories{
			identities:    postgres.NewIdentityRepository(db),
			users:         postgres.NewUserRepository(db),
			refreshTokens: postgres.NewRefreshTokenRepository(db),
			cars:          postgres.NewCarRepository(db),
			reservations:  postgres.NewReservationRepository(db),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Config.Store.Driver)
	}
}

func (c *Container) newMailer() user.Mailer {
	if c.Config.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not set, emails are written to the log")
		return mail.LogMailer{}
	}
	return mail.NewSMTPMailer(c.Config.SMTP)
}

func (c *Container) newPublisher() (events.Publisher, error) {
	cfg := c.Config.MQTT
	if cfg.Broker == "" {
		return events.LogPublisher{}, nil
	}

	client := mqtt.NewClient(&mqtt.Config{
		Broker:               cfg.Broker,
		ClientID:             cfg.ClientID,
		Username:             cfg.Username,
		Password:             cfg.Password,
		CleanSession:         true,
		KeepAlive:            60,
		ConnectTimeout:       10,
		AutoReconnect:        true,
		MaxReconnectInterval: time.Minute,
		Logger:               logger.Logger,
	})
	if err := client.Connect(); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() error {
		client.Disconnect()
		return nil
	})

	logger.Info("Publishing domain events to MQTT",
		zap.String("broker", cfg.Broker),
		zap.String("topic_prefix", cfg.TopicPrefix),
	)

	return events.NewMQTTPublisher(client, cfg.TopicPrefix, cfg.QoS), nil
}

// Health reports whether the backing store is reachable.
func (c *Container) Health() error {
	return c.health()
}

// Close releases the store connection and the broker session.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
