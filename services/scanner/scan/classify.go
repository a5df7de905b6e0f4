// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scan implements the ledger traversal strategies that drive the
// scanner service: a forward day-range scan, a quick backward scan, and a
// tag-filtered forward scan, plus the content classification and
// capacity-bounded bucket aggregation they share.
package scan

import (
	"mime"
	"strings"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
)

// Category classifies a record by the primary token of its Content-Type
// tag. Unrecognized or missing types classify as CategoryOther.
type Category string

const (
	CategoryImage       Category = "image"
	CategoryVideo       Category = "video"
	CategoryAudio       Category = "audio"
	CategoryApplication Category = "application"
	CategoryOther       Category = "other"
)

// MediaCategories are the categories that gate whether an aggregating
// scan keeps going. Application and other never drive termination.
var MediaCategories = []Category{CategoryImage, CategoryVideo, CategoryAudio}

var categoryByToken = map[string]Category{
	"image":       CategoryImage,
	"video":       CategoryVideo,
	"audio":       CategoryAudio,
	"application": CategoryApplication,
}

// Classify derives a record's category from its Content-Type tag.
// The tag name is matched case-insensitively and duplicate tags resolve
// last-value-wins (see Record.TagValue).
func Classify(r datatypes.Record) Category {
	return ClassifyContentType(r.TagValue("Content-Type"))
}

// ClassifyContentType maps a raw content-type string to a Category.
// Parameters after a ";" are ignored; the primary token before the "/"
// selects the category. Empty and malformed values map to other.
func ClassifyContentType(contentType string) Category {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return CategoryOther
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Fall back to a raw split so values like "image/" still
		// classify by their primary token.
		mediaType = strings.ToLower(contentType)
	}
	primary, _, _ := strings.Cut(mediaType, "/")
	if c, ok := categoryByToken[strings.TrimSpace(primary)]; ok {
		return c
	}
	return CategoryOther
}

// ClassifiedRecord pairs a record with its derived category for
// emission to the client.
type ClassifiedRecord struct {
	datatypes.Record
	Category Category `json:"category"`
}

// ClassifyAll classifies a fetched record set in place-order.
func ClassifyAll(records []datatypes.Record) []ClassifiedRecord {
	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, ClassifiedRecord{Record: r, Category: Classify(r)})
	}
	return out
}
