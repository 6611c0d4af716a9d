package repository

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"taskmaster/internal/models"
)

// ErrCorrupt marks a stored value that is present but cannot be restored
var ErrCorrupt = errors.New("persisted state is corrupt")

//go:embed snapshot.schema.json
var snapshotSchemaJSON string

var snapshotSchema, taskListSchema = compileSchemas()

func compileSchemas() (*jsonschema.Schema, *jsonschema.Schema) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.AssertFormat = true
	if err := compiler.AddResource("snapshot.json", strings.NewReader(snapshotSchemaJSON)); err != nil {
		panic(fmt.Sprintf("snapshot schema: %v", err))
	}
	return compiler.MustCompile("snapshot.json"), compiler.MustCompile("snapshot.json#/definitions/taskList")
}

// Codec converts between stored bytes and snapshots. Decoding checks the shape
// of the record first so that wrong types are reported as corruption, while
// missing fields simply keep their zero defaults.
type Codec struct {
	newID           func() models.TaskID
	leaderboardSize int
}

// NewCodec creates a codec. newID assigns ids to restored tasks that have none.
func NewCodec(newID func() models.TaskID, leaderboardSize int) *Codec {
	if leaderboardSize <= 0 {
		leaderboardSize = models.DefaultLeaderboardSize
	}
	return &Codec{newID: newID, leaderboardSize: leaderboardSize}
}

// Encode serializes a snapshot
func (c *Codec) Encode(s models.Snapshot) ([]byte, error) {
	if s.Tasks == nil {
		s.Tasks = []models.Task{}
	}
	if s.Leaderboard == nil {
		s.Leaderboard = []models.LeaderboardEntry{}
	}
	data, err := sonic.ConfigStd.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode restores a snapshot and repairs its invariants
func (c *Codec) Decode(data []byte) (models.Snapshot, error) {
	var s models.Snapshot
	if err := validate(snapshotSchema, data); err != nil {
		return s, err
	}
	if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	s.Normalize(c.newID, c.leaderboardSize)
	return s, nil
}

// DecodeTaskList restores a bare task array as written by the earliest
// version of the app
func (c *Codec) DecodeTaskList(data []byte) ([]models.Task, error) {
	if err := validate(taskListSchema, data); err != nil {
		return nil, err
	}
	var tasks []models.Task
	if err := sonic.ConfigStd.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	s := models.Snapshot{Tasks: tasks}
	s.Normalize(c.newID, c.leaderboardSize)
	return s.Tasks, nil
}

func validate(schema *jsonschema.Schema, data []byte) error {
	// json.Number keeps integers distinguishable from fractions for the schema
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrCorrupt, describeSchemaError(err))
	}
	return nil
}

// describeSchemaError reports the first leaf cause as "path: message"
func describeSchemaError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	path := strings.TrimPrefix(ve.InstanceLocation, "/")
	if path == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", path, ve.Message)
}
