package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/repository"
)

const (
	insertCategorySQL = `INSERT INTO categories (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`

	insertProductSQL = `INSERT INTO products
		(id, name, description, price, stock, category_id, image_url)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		ON CONFLICT (id) DO NOTHING`

	insertUserSQL = `INSERT INTO users (id, email, name, password) VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`
)

func main() {
	var (
		databaseURL  string
		fixturesFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&fixturesFile, "fixtures", "db/seed/fixtures.json", "path to fixtures JSON file, optionally gzip-compressed (.gz)")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("database URL is required: set --database-url or DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, fixturesFile); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}

	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, fixturesFile string) error {
	lg.Info("Reading fixtures", zap.String("path", fixturesFile))

	fx, err := readFixtures(fixturesFile)
	if err != nil {
		return errors.Wrap(err, "read fixtures")
	}
	dedupe(lg, fx)

	lg.Info("Connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return load(ctx, lg, pool, fx)
}

// dedupe drops repeated ids from every fixture table and logs what it dropped.
func dedupe(lg *zap.Logger, fx *fixtures) {
	report := func(table string, dups []string) {
		if len(dups) > 0 {
			lg.Warn("Skipping duplicate fixture ids", zap.String("table", table), zap.Strings("ids", dups))
		}
	}

	var dups []string
	fx.Categories, dups = unique(fx.Categories, func(c product.Category) string { return c.ID })
	report("categories", dups)
	fx.Products, dups = unique(fx.Products, func(p product.Product) string { return p.ID })
	report("products", dups)
	fx.Users, dups = unique(fx.Users, func(u seedUser) string { return u.ID })
	report("users", dups)
	fx.Orders, dups = unique(fx.Orders, func(o order.Order) string { return o.ID })
	report("orders", dups)
}

// load writes fx. Products depend on categories; users are independent and
// load alongside them. Orders go last through the order repository.
func load(ctx context.Context, lg *zap.Logger, db repository.DB, fx *fixtures) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := seedCategories(gctx, lg, db, fx.Categories); err != nil {
			return errors.Wrap(err, "seed categories")
		}
		return errors.Wrap(seedProducts(gctx, lg, db, fx.Products), "seed products")
	})
	g.Go(func() error {
		return errors.Wrap(seedUsers(gctx, lg, db, fx.Users), "seed users")
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return errors.Wrap(seedOrders(ctx, lg, repository.NewOrderRepository(db, repository.OrderConfig{}), fx.Orders), "seed orders")
}

func seedCategories(ctx context.Context, lg *zap.Logger, db repository.DB, categories []product.Category) error {
	for _, c := range categories {
		if _, err := db.Exec(ctx, insertCategorySQL, c.ID, c.Name); err != nil {
			return errors.Wrapf(err, "insert category %s", c.ID)
		}
	}
	lg.Info("Seeded categories", zap.Int("count", len(categories)))
	return nil
}

func seedProducts(ctx context.Context, lg *zap.Logger, db repository.DB, products []product.Product) error {
	for _, p := range products {
		if _, err := db.Exec(ctx, insertProductSQL,
			p.ID, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.ImageURL,
		); err != nil {
			return errors.Wrapf(err, "insert product %s", p.ID)
		}
	}
	lg.Info("Seeded products", zap.Int("count", len(products)))
	return nil
}

func seedUsers(ctx context.Context, lg *zap.Logger, db repository.DB, users []seedUser) error {
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrapf(err, "hash password for %s", u.ID)
		}
		if _, err := db.Exec(ctx, insertUserSQL, u.ID, u.Email, u.Name, string(hash)); err != nil {
			return errors.Wrapf(err, "insert user %s", u.ID)
		}
	}
	lg.Info("Seeded users", zap.Int("count", len(users)))
	return nil
}

func seedOrders(ctx context.Context, lg *zap.Logger, orders order.Repository, fixtures []order.Order) error {
	var created, skipped int
	for i := range fixtures {
		o := &fixtures[i]
		_, err := orders.GetByID(ctx, o.ID)
		switch {
		case err == nil:
			skipped++
			continue
		case !errors.Is(err, order.ErrNotFound):
			return errors.Wrapf(err, "look up order %s", o.ID)
		}
		if err := orders.Create(ctx, o); err != nil {
			return errors.Wrapf(err, "create order %s", o.ID)
		}
		created++
	}
	lg.Info("Seeded orders", zap.Int("created", created), zap.Int("skipped_existing", skipped))
	return nil
}
