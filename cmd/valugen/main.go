package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"valugen/config"
	"valugen/core"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	// Database drivers

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run(output io.Writer, args []string) error {
	flags := flag.NewFlagSet("valugen", flag.ContinueOnError)
	flags.SetOutput(output)

	profileFile := flags.String("profile", "", "Path to template profile YAML (defaults apply when empty)")
	basePath := flags.String("base", ".", "Base directory for job folders")
	folderName := flags.String("folder", "", "Job folder name; supports ${date:...} placeholders")
	dataExcel := flags.String("data", "", "Path to the data workbook (data.xlsx)")
	steps := flags.String("step", "all", "Pipeline steps: folders, calc, docx, images, previews, import, all (comma-separated)")
	fetcherType := flags.String("fetcher", "csv", "Asset source for import: csv, dynamodb, mysql, postgres")
	fetcherDir := flags.String("fetcher-dir", "./data_csv", "Directory of CSV exports for the csv fetcher")
	importSource := flags.String("source", "", "Source table or file name for import")
	importFields := flags.String("fields", "", "Source field names for number,name,location (comma triple); mapped onto the profile's asset columns")
	importOut := flags.String("import-out", "", "Output path for the imported data workbook (defaults to -data)")
	dbDSN := flags.String("db-dsn", "", "Database connection string (DSN) for mysql/postgres")
	s3Bucket := flags.String("s3-bucket", "", "S3 bucket name for uploading the finished job folder")
	s3Prefix := flags.String("s3-prefix", "valugen-output", "S3 prefix (folder) for uploaded files")

	if err := flags.Parse(args); err != nil {
		return err
	}

	// Initialize structured logger
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// 1. Load template profile
	profile := config.DefaultProfile()
	if *profileFile != "" {
		slog.Info("Loading template profile", "file", *profileFile)
		loaded, err := config.LoadProfile(*profileFile)
		if err != nil {
			return err
		}
		profile = loaded
	}
	if err := config.NewValidator().ValidateProfile(profile); err != nil {
		return fmt.Errorf("invalid profile %s: %w", profile.Id, err)
	}

	if *folderName == "" {
		return fmt.Errorf("folder is required")
	}

	stepList := strings.Split(*steps, ",")
	for i := range stepList {
		stepList[i] = strings.TrimSpace(stepList[i])
	}
	if *steps == "all" {
		stepList = []string{"folders", "calc", "docx", "images", "previews"}
	}

	// 2. Import assets first when requested
	if containsStep(stepList, "import") {
		fetcher, err := buildFetcher(*fetcherType, *fetcherDir, *dbDSN)
		if err != nil {
			return err
		}
		if *importSource == "" {
			return fmt.Errorf("source is required for import")
		}
		outPath := *importOut
		if outPath == "" {
			outPath = *dataExcel
		}
		if outPath == "" {
			return fmt.Errorf("import-out or data is required for import")
		}
		spec := core.ImportSpec{Source: *importSource}
		if *importFields != "" {
			parts := strings.SplitN(*importFields, ",", 3)
			for len(parts) < 3 {
				parts = append(parts, "")
			}
			spec.FieldColumns = core.AssetFieldColumns(profile.Columns,
				strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]))
		}
		rows, err := core.ImportAssets(fetcher, spec, profile.DataSheet, outPath)
		if err != nil {
			return err
		}
		slog.Info("Assets imported", "source", *importSource, "rows", rows, "path", outPath)
		stepList = removeStep(stepList, "import")
	}

	// 3. Run pipeline steps
	service := core.NewService(profile)
	req := core.Request{
		BasePath:      *basePath,
		FolderName:    *folderName,
		DataExcelPath: *dataExcel,
	}
	if err := service.Run(req, stepList); err != nil {
		return err
	}

	// 4. Upload to S3 if configured
	if *s3Bucket != "" {
		slog.Info("Starting S3 upload", "bucket", *s3Bucket, "prefix", *s3Prefix)

		cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
		if err != nil {
			return fmt.Errorf("unable to load AWS SDK config for S3: %w", err)
		}

		uploader := core.NewS3Uploader(cfg, *s3Bucket, *s3Prefix)
		if err := uploader.UploadDirectory(*basePath); err != nil {
			return fmt.Errorf("failed to upload job folder to s3: %w", err)
		}
		slog.Info("Successfully uploaded to S3")
	}

	return nil
}

func buildFetcher(fetcherType, csvDir, dbDSN string) (core.RowFetcher, error) {
	switch fetcherType {
	case "dynamodb":
		slog.Info("Initializing DynamoDB row fetcher")
		// Loads credentials from env vars, IAM roles, etc.
		cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
		}
		return core.NewDynamoDBRowFetcher(cfg), nil
	case "mysql", "postgres":
		if dbDSN == "" {
			return nil, fmt.Errorf("db-dsn is required for %s fetcher", fetcherType)
		}
		slog.Info("Initializing SQL row fetcher", "type", fetcherType)
		db, err := sql.Open(fetcherType, dbDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open db connection: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping db: %w", err)
		}
		return core.NewSQLRowFetcher(db, fetcherType), nil
	default:
		slog.Info("Initializing CSV row fetcher", "dir", csvDir)
		return core.NewCsvRowFetcher(csvDir), nil
	}
}

func containsStep(steps []string, name string) bool {
	for _, s := range steps {
		if strings.TrimSpace(s) == name {
			return true
		}
	}
	return false
}

func removeStep(steps []string, name string) []string {
	out := steps[:0]
	for _, s := range steps {
		if strings.TrimSpace(s) != name {
			out = append(out, s)
		}
	}
	return out
}
