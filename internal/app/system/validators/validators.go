// Package validators attaches MongoDB $jsonSchema validators to the
// application's collections.
//
// Documents are keyed by uuid strings and timestamps are ISO-8601 text,
// so the schemas constrain strings rather than objectId or date types.
package validators

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type collection struct {
	name   string
	schema bson.M
}

func collections() []collection {
	return []collection{
		{"users", object(
			[]string{"_id", "email", "full_name", "auth_type", "created_at"},
			bson.M{
				"_id":             idString,
				"email":           nonBlank,
				"full_name":       str,
				"auth_type":       enum(models.AuthMethodValues()...),
				"hashed_password": str,
				"created_at":      isoTimestamp,
				"group_ids":       idArray,
			})},
		{"groups", object(
			[]string{"_id", "name", "member_ids", "created_at"},
			bson.M{
				"_id":         idString,
				"name":        nonBlank,
				"description": str,
				"member_ids":  idArray,
				"created_at":  isoTimestamp,
			})},
		{"messages", object(
			[]string{"_id", "group_id", "user_id", "user_name", "content", "created_at"},
			bson.M{
				"_id":        idString,
				"group_id":   idString,
				"user_id":    idString,
				"user_name":  str,
				"content":    bson.M{"bsonType": "string", "minLength": 1},
				"created_at": isoTimestamp,
			})},
		{"assignments", object(
			[]string{"_id", "user_id", "title", "due_date", "source", "completed", "created_at"},
			bson.M{
				"_id":         idString,
				"user_id":     idString,
				"title":       nonBlank,
				"description": str,
				"due_date":    isoTimestamp,
				"source":      enum(models.SourceManual, models.SourceLearningSuite, models.SourceCanvas),
				"course_name": str,
				"completed":   bson.M{"bsonType": "bool"},
				"created_at":  isoTimestamp,
			})},
		{"lms_configs", object(
			[]string{"_id", "user_id"},
			bson.M{
				"_id":                    idString,
				"user_id":                idString,
				"learning_suite_api_key": str,
				"canvas_api_key":         str,
				"canvas_domain":          str,
			})},
		{"audit_events", object(
			[]string{"_id", "timestamp", "category", "event_type", "success"},
			bson.M{
				"_id":        idString,
				"timestamp":  isoTimestamp,
				"category":   str,
				"event_type": str,
				"success":    bson.M{"bsonType": "bool"},
				"details":    bson.M{"bsonType": "object"},
			})},
	}
}

// EnsureAll creates any missing collection and (re)applies its validator.
// Deployments that reject collMod, such as some DocumentDB versions, keep
// their collections without validation. Failures are collected so one bad
// collection does not hide the others.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	log := zap.L().With(zap.String("db", db.Name()))

	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		log.Warn("list collections failed; creating blindly", zap.Error(err))
	}

	var errs []error
	for _, c := range collections() {
		if !slices.Contains(existing, c.name) {
			if err := db.CreateCollection(ctx, c.name); err != nil && !hasCode(err, []int32{48}, "already exists", "namespace exists") {
				errs = append(errs, fmt.Errorf("create %s: %w", c.name, err))
				continue
			}
			log.Info("created collection", zap.String("collection", c.name))
		}

		cmd := bson.D{
			{Key: "collMod", Value: c.name},
			{Key: "validator", Value: c.schema},
			{Key: "validationLevel", Value: "moderate"},
			{Key: "validationAction", Value: "error"},
		}
		err := db.RunCommand(ctx, cmd).Err()
		switch {
		case err == nil:
			log.Debug("validator applied", zap.String("collection", c.name))
		case hasCode(err, []int32{59, 115}, "no such command", "not implemented", "not supported"):
			log.Info("validator skipped (unsupported)", zap.String("collection", c.name))
		default:
			errs = append(errs, fmt.Errorf("validator %s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}

// hasCode reports whether err is a server command error with one of codes,
// or its message contains one of phrases.
func hasCode(err error, codes []int32, phrases ...string) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && slices.Contains(codes, ce.Code) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

var (
	str          = bson.M{"bsonType": "string"}
	idString     = bson.M{"bsonType": "string", "minLength": 1}
	idArray      = bson.M{"bsonType": "array", "items": idString}
	nonBlank     = bson.M{"bsonType": "string", "minLength": 1, "pattern": `.*\S.*`}
	isoTimestamp = bson.M{"bsonType": "string", "pattern": `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`}
)

func enum(values ...string) bson.M {
	a := make(bson.A, len(values))
	for i, v := range values {
		a[i] = v
	}
	return bson.M{"enum": a}
}

func object(required []string, props bson.M) bson.M {
	req := make(bson.A, len(required))
	for i, r := range required {
		req[i] = r
	}
	return bson.M{"$jsonSchema": bson.M{
		"bsonType":   "object",
		"required":   req,
		"properties": props,
	}}
}
