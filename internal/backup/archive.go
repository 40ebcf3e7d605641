// Package backup 应用数据的 tar.gz 归档
//
// 归档内每张表一个 JSONL 文件（<table>.jsonl，每行一条记录，键为字段名），
// 外加 manifest.json 记录应用、时间和每张表的行数。
package backup

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/anoixa/bandpress/database"
	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	// FormatVersion 归档格式版本
	FormatVersion = "1"

	manifestName  = "manifest.json"
	readBatchSize = 500
	maxEntrySize  = 512 << 20
)

// Manifest 归档元数据
type Manifest struct {
	Version     string           `json:"version"`
	App         string           `json:"app"`
	Timestamp   time.Time        `json:"timestamp"`
	Database    string           `json:"database"`
	Tables      []string         `json:"tables"`
	RecordCount map[string]int64 `json:"record_count"`
}

// Export 按外键顺序导出应用的全部表
func Export(ctx context.Context, db *gorm.DB, app string, w io.Writer) (*Manifest, error) {
	toExport, err := database.ModelsFor(app)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Version:     FormatVersion,
		App:         app,
		Timestamp:   time.Now().UTC(),
		Database:    db.Dialector.Name(),
		RecordCount: make(map[string]int64, len(toExport)),
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	for _, model := range toExport {
		sch, err := database.TableSchema(db, model)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		count, err := exportTable(ctx, db, model, sch, &buf)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", sch.Table, err)
		}
		if err := writeEntry(tw, sch.Table+".jsonl", buf.Bytes(), manifest.Timestamp); err != nil {
			return nil, err
		}

		manifest.Tables = append(manifest.Tables, sch.Table)
		manifest.RecordCount[sch.Table] = count
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeEntry(tw, manifestName, data, manifest.Timestamp); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func writeEntry(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	if err := tw.WriteHeader(&tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: modTime,
	}); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", name, err)
	}
	_, err := tw.Write(data)
	return err
}

func exportTable(ctx context.Context, db *gorm.DB, model interface{}, sch *schema.Schema, w io.Writer) (int64, error) {
	enc := json.NewEncoder(w)
	order := strings.Join(sch.PrimaryFieldDBNames, ", ")
	sliceType := reflect.SliceOf(reflect.TypeOf(model))

	var count int64
	for offset := 0; ; offset += readBatchSize {
		batch := reflect.New(sliceType)
		err := db.WithContext(ctx).
			Model(model).
			Order(order).
			Limit(readBatchSize).
			Offset(offset).
			Find(batch.Interface()).Error
		if err != nil {
			return count, err
		}

		rows := batch.Elem()
		for i := 0; i < rows.Len(); i++ {
			if err := enc.Encode(rowToMap(ctx, sch, rows.Index(i))); err != nil {
				return count, err
			}
			count++
		}
		if rows.Len() < readBatchSize {
			break
		}
	}
	return count, nil
}

// rowToMap 只导出表字段，键为结构体字段名（密码哈希等 json:"-" 字段也要保留）
func rowToMap(ctx context.Context, sch *schema.Schema, rv reflect.Value) map[string]interface{} {
	row := make(map[string]interface{}, len(sch.DBNames))
	for _, name := range sch.DBNames {
		field := sch.FieldsByDBName[name]
		v, _ := field.ValueOf(ctx, rv)
		row[field.Name] = v
	}
	return row
}

// ReadManifest 只读取归档的元数据
func ReadManifest(r io.Reader) (*Manifest, error) {
	_, manifest, err := readArchive(r)
	return manifest, err
}

func readArchive(r io.Reader) (map[string][]byte, *Manifest, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid archive: %w", err)
	}
	defer func() { _ = gz.Close() }()

	entries := make(map[string][]byte)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("invalid archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || strings.Contains(hdr.Name, "/") {
			continue
		}

		data, err := io.ReadAll(io.LimitReader(tr, maxEntrySize+1))
		if err != nil {
			return nil, nil, err
		}
		if len(data) > maxEntrySize {
			return nil, nil, fmt.Errorf("archive entry %s is too large", hdr.Name)
		}
		entries[hdr.Name] = data
	}

	raw, ok := entries[manifestName]
	if !ok {
		return nil, nil, fmt.Errorf("invalid archive: %s not found", manifestName)
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if manifest.Version != FormatVersion {
		return nil, nil, fmt.Errorf("unsupported archive version %q", manifest.Version)
	}
	return entries, &manifest, nil
}

// Import 把归档写入 db，表结构不存在时先建表
func Import(ctx context.Context, db *gorm.DB, app string, r io.Reader, opts database.CopyOptions) (*Manifest, []database.TableStats, error) {
	if err := opts.Normalize(); err != nil {
		return nil, nil, err
	}

	entries, manifest, err := readArchive(r)
	if err != nil {
		return nil, nil, err
	}
	if manifest.App != app {
		return manifest, nil, fmt.Errorf("archive belongs to app %q, not %q", manifest.App, app)
	}

	toImport, err := database.ModelsFor(app)
	if err != nil {
		return manifest, nil, err
	}
	if err := database.Migrate(db, app); err != nil {
		return manifest, nil, err
	}

	stats := make([]database.TableStats, 0, len(toImport))
	for _, model := range toImport {
		sch, err := database.TableSchema(db, model)
		if err != nil {
			return manifest, stats, err
		}
		data, ok := entries[sch.Table+".jsonl"]
		if !ok {
			log.Printf("[Backup] Table %s not present in archive, skipping", sch.Table)
			stats = append(stats, database.TableStats{Table: sch.Table})
			continue
		}

		st, err := importTable(ctx, db, model, sch, data, opts)
		stats = append(stats, st)
		if err != nil {
			return manifest, stats, fmt.Errorf("import %s: %w", sch.Table, err)
		}
		log.Printf("[Backup] %s: read %d, written %d, skipped %d", st.Table, st.Read, st.Written, st.Skipped)
	}
	return manifest, stats, nil
}

func importTable(ctx context.Context, db *gorm.DB, model interface{}, sch *schema.Schema, data []byte, opts database.CopyOptions) (database.TableStats, error) {
	st := database.TableStats{Table: sch.Table}

	modelType := reflect.TypeOf(model)
	sliceType := reflect.SliceOf(modelType)
	batch := reflect.MakeSlice(sliceType, 0, opts.BatchSize)

	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		ptr := reflect.New(sliceType)
		ptr.Elem().Set(batch)
		written, err := database.InsertBatch(ctx, db, ptr.Interface(), opts.OnConflict)
		if err != nil {
			return err
		}
		st.Written += written
		st.Skipped += int64(batch.Len()) - written
		batch = reflect.MakeSlice(sliceType, 0, opts.BatchSize)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	for line := 1; ; line++ {
		var row map[string]interface{}
		if err := dec.Decode(&row); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return st, fmt.Errorf("line %d: %w", line, err)
		}

		item := reflect.New(modelType.Elem())
		if err := decodeRow(row, item.Interface()); err != nil {
			return st, fmt.Errorf("line %d: %w", line, err)
		}
		batch = reflect.Append(batch, item)
		st.Read++

		if batch.Len() >= opts.BatchSize {
			if err := flush(); err != nil {
				return st, err
			}
		}
	}
	if err := flush(); err != nil {
		return st, err
	}

	if st.Written > 0 {
		if err := database.ResetSequence(ctx, db, model); err != nil {
			return st, err
		}
	}
	return st, nil
}

// decodeRow 按字段名解码一行，时间字段为 RFC3339
func decodeRow(row map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "backup",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(row)
}
