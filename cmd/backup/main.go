package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"ventrilinks/config"
	"ventrilinks/models"
	"ventrilinks/providers/airtable"
	"ventrilinks/services"
	"ventrilinks/storage"
)

// BackupConfig ergänzt die Server-Konfiguration um die Retention.
type BackupConfig struct {
	KeepBackups int `envconfig:"KEEP_BACKUPS" default:"4"`
}

func main() {
	log.Println("Starte Backup-Prozess...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}
	var bc BackupConfig
	if err := envconfig.Process("", &bc); err != nil {
		log.Fatalf("Fehler beim Laden der Backup-Konfiguration: %v", err)
	}
	if cfg.BackupS3Bucket == "" {
		log.Fatal("BACKUP_S3_BUCKET ist nicht gesetzt")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des S3-Clients: %v", err)
	}

	at := airtable.NewClient(cfg, logger)
	exports := []struct {
		table   *airtable.Table
		name    string
		columns []string
		display map[string]string
	}{
		{at.Table(cfg.ClientsTable, models.StartupFields), "clients", models.StartupCSVColumns, models.StartupFields},
		{at.Table(cfg.VCsTable, models.VCFields), "vcs", models.VCCSVColumns, models.VCFields},
		{at.Table(cfg.MatchesTable, models.MatchFields), "matches", models.MatchCSVColumns, models.MatchFields},
	}

	ctx := context.Background()
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")

	for _, e := range exports {
		records, err := e.table.List(ctx)
		if err != nil {
			log.Fatalf("Fehler beim Laden der Tabelle %s: %v", e.name, err)
		}

		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if err := services.WriteCSV(gz, e.columns, e.display, records); err != nil {
			log.Fatalf("Fehler beim Schreiben des CSV für %s: %v", e.name, err)
		}
		if err := gz.Close(); err != nil {
			log.Fatalf("Fehler beim Komprimieren für %s: %v", e.name, err)
		}

		key := fmt.Sprintf("backups/%s-%s.csv.gz", e.name, stamp)
		if _, err := storage.UploadFile(s3Client, cfg.BackupS3Bucket, key, buf.Bytes(), cfg); err != nil {
			log.Fatalf("Fehler beim Hochladen nach S3: %v", err)
		}
		log.Printf("Backup hochgeladen: %s (%d Records)", key, len(records))

		if err := pruneOldBackups(ctx, s3Client, cfg.BackupS3Bucket, e.name, bc.KeepBackups); err != nil {
			log.Printf("Warnung: Aufräumen alter Backups fehlgeschlagen: %v", err)
		}
	}

	log.Println("Backup-Prozess abgeschlossen.")
}

// pruneOldBackups behält die jüngsten keep Backups einer Tabelle und löscht
// den Rest.
func pruneOldBackups(ctx context.Context, client *s3.Client, bucket, table string, keep int) error {
	prefix := fmt.Sprintf("backups/%s-", table)
	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: &bucket,
		Prefix: &prefix,
	})
	if err != nil {
		return err
	}

	var keys []string
	for _, obj := range out.Contents {
		if obj.Key != nil && strings.HasSuffix(*obj.Key, ".csv.gz") {
			keys = append(keys, *obj.Key)
		}
	}
	// Die Zeitstempel im Key sortieren lexikographisch chronologisch.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	for i := keep; i < len(keys); i++ {
		key := keys[i]
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key}); err != nil {
			return err
		}
		log.Printf("Altes Backup gelöscht: %s", key)
	}
	return nil
}
