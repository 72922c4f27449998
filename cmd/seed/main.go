package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"slugtree/internal/config"
	"slugtree/internal/domain/services"
	"slugtree/internal/repository/postgres"
	"slugtree/internal/service"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	clearData := flag.Bool("clear-data", false, "Clear all documents and folders (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	collections, err := config.LoadCollections(cfg.CollectionsFile)
	if err != nil {
		log.Fatalf("Failed to load collections config: %v", err)
	}

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, cfg.TablePrefix, collections); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, cfg.TablePrefix, collections); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		log.Println("🧹 Clearing existing documents and folders...")
		if err := clearAllData(ctx, pool, cfg.TablePrefix, collections); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	// Create repositories and services
	repoConfig := &postgres.RepositoryConfig{
		Pool:        pool,
		TablePrefix: cfg.TablePrefix,
		Collections: collections,
		Logger:      logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	docRepo := postgres.NewDocumentRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	pathResolver := service.NewPathResolver(folderRepo, logger)
	slugService := service.NewSlugService(pathResolver, logger)
	cascadeService := service.NewCascadeService(pathResolver, slugService, docRepo, logger)
	mutationService := service.NewMutationService(folderRepo, docRepo, pathResolver, slugService, cascadeService, txManager, logger)

	log.Println("⚠️  Clearing existing documents and folders...")
	if err := clearAllData(ctx, pool, cfg.TablePrefix, collections); err != nil {
		log.Printf("Warning: Could not clear data: %v", err)
	}

	log.Println("📝 Seeding folder structure and documents...")
	if err := seedFixture(ctx, mutationService, collections); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Println("🎉 Seeding complete!")
}

// seedFixture builds a small tree: appeals/{2024,2025} plus services, with a
// few documents spread across them.
func seedFixture(ctx context.Context, mutations services.MutationService, collections []config.CollectionConfig) error {
	if len(collections) == 0 {
		log.Println("No collections configured, seeding folders only")
	}

	folders := []struct {
		name   string
		parent string // name of parent in this list; "" = root
	}{
		{name: "Appeals"},
		{name: "2024", parent: "Appeals"},
		{name: "2025", parent: "Appeals"},
		{name: "Services"},
	}

	folderIDs := make(map[string]string)
	for _, f := range folders {
		var parentID *string
		if f.parent != "" {
			id := folderIDs[f.parent]
			parentID = &id
		}
		result, err := mutations.Create(ctx, &services.CreateRequest{
			Type:     services.ItemTypeFolder,
			ParentID: parentID,
			Name:     f.name,
		})
		if err != nil {
			return err
		}
		folderIDs[f.name] = result.ID
		log.Printf("✅ Created folder: %s (ID: %s)", f.name, result.ID)
	}

	if len(collections) == 0 {
		return nil
	}
	collection := collections[0].Name

	docs := []struct {
		title  string
		folder string // "" = root
	}{
		{title: "Spring Campaign", folder: "2024"},
		{title: "Winter Campaign", folder: "2024"},
		{title: "Food Pantry", folder: "Services"},
		{title: "About Us"},
	}

	for _, d := range docs {
		var parentID *string
		if d.folder != "" {
			id := folderIDs[d.folder]
			parentID = &id
		}
		result, err := mutations.Create(ctx, &services.CreateRequest{
			Type:       services.ItemTypeDocument,
			ParentID:   parentID,
			Name:       d.title,
			Collection: collection,
		})
		if err != nil {
			return err
		}
		log.Printf("✅ Created document: %s (ID: %s)", d.title, result.ID)
	}

	return nil
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, prefix string, collections []config.CollectionConfig) error {
	foldersTable := prefix + "folders"

	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + foldersTable + ` (
			id UUID PRIMARY KEY,
			parent_id UUID REFERENCES ` + foldersTable + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			path_segment TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			folder_types TEXT[],
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `folders_parent ON ` + foldersTable + `(parent_id)`,
	}

	for _, c := range collections {
		table := prefix + c.Table
		createDocs := `
			CREATE TABLE IF NOT EXISTS ` + table + ` (
				id UUID PRIMARY KEY,
				folder_id UUID REFERENCES ` + foldersTable + `(id) ON DELETE SET NULL,
				title TEXT NOT NULL,
				page_segment TEXT NOT NULL DEFAULT '',
				slug TEXT NOT NULL DEFAULT '',
				slug_history JSONB NOT NULL DEFAULT '[]',
				sort_order INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'draft',
				created_at TIMESTAMPTZ DEFAULT NOW(),
				updated_at TIMESTAMPTZ DEFAULT NOW()
			)
		`
		if _, err := pool.Exec(ctx, createDocs); err != nil {
			return err
		}
		indexes = append(indexes,
			`CREATE INDEX IF NOT EXISTS idx_`+prefix+c.Table+`_folder ON `+table+`(folder_id)`,
			`CREATE INDEX IF NOT EXISTS idx_`+prefix+c.Table+`_slug ON `+table+`(slug)`,
		)
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops every managed table
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, prefix string, collections []config.CollectionConfig) error {
	for _, c := range collections {
		if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS `+prefix+c.Table+` CASCADE`); err != nil {
			return err
		}
	}
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS `+prefix+`folders CASCADE`); err != nil {
		return err
	}
	return nil
}

// clearAllData deletes every row but keeps the schema
func clearAllData(ctx context.Context, pool *pgxpool.Pool, prefix string, collections []config.CollectionConfig) error {
	for _, c := range collections {
		if _, err := pool.Exec(ctx, `DELETE FROM `+prefix+c.Table); err != nil {
			return err
		}
	}
	if _, err := pool.Exec(ctx, `DELETE FROM `+prefix+`folders`); err != nil {
		return err
	}
	return nil
}
