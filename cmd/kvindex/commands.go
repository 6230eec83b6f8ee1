//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2024 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/objects"
	"github.com/DataNirvana/Database-sub000/entities/filters"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

type namespaceArg struct {
	Namespace string `positional-arg-name:"namespace" required:"yes"`
}

type countCommand struct {
	app  *app
	Args namespaceArg `positional-args:"yes" required:"yes"`
}

func (c *countCommand) Execute(args []string) error {
	engine, _, done, err := c.app.engine()
	if err != nil {
		return err
	}
	defer done()

	n, err := engine.Count(c.app.ctx, c.Args.Namespace)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d records\n", c.Args.Namespace, n)
	return nil
}

type clearCommand struct {
	app  *app
	Args namespaceArg `positional-args:"yes" required:"yes"`
}

func (c *clearCommand) Execute(args []string) error {
	engine, _, done, err := c.app.engine()
	if err != nil {
		return err
	}
	defer done()

	ok, err := engine.Clear(c.app.ctx, c.Args.Namespace)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("clear %s did not complete, see the log", c.Args.Namespace)
	}
	fmt.Printf("%s: cleared\n", c.Args.Namespace)
	return nil
}

var widgetClass = &schema.Class{
	Name: "Widget",
	Properties: []schema.Property{
		{Name: "ID", DataType: schema.DataTypeUint32},
		{Name: "Price", DataType: schema.DataTypeDouble},
		{Name: "Name", DataType: schema.DataTypeString},
		{Name: "Active", DataType: schema.DataTypeBool},
		{Name: "Created", DataType: schema.DataTypeDateTime},
	},
}

func widgets() []schema.Record {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []map[string]interface{}{
		{"ID": uint32(1), "Price": 2.50, "Name": "wind", "Active": true, "Created": created},
		{"ID": uint32(2), "Price": 4.00, "Name": "wing", "Active": false, "Created": created.Add(24 * time.Hour)},
		{"ID": uint32(3), "Price": 9.99, "Name": "wolf", "Active": true, "Created": created.Add(48 * time.Hour)},
	}
	out := make([]schema.Record, len(rows))
	for i, row := range rows {
		out[i] = schema.MapRecord{Schema: widgetClass, Fields: row}
	}
	return out
}

type demoCommand struct {
	app *app
}

func (c *demoCommand) Execute(args []string) error {
	engine, log, done, err := c.app.engine()
	if err != nil {
		return err
	}
	defer done()
	ctx := c.app.ctx

	if _, err := engine.Clear(ctx, widgetClass.Name); err != nil {
		if !errors.Is(err, objects.ErrAdminDisabled) {
			return err
		}
		log.WithField("action", "namespace_clear").
			WithField("namespace", widgetClass.Name).
			Warn("allow_admin is off, loading on top of existing data")
	}

	records := widgets()
	if _, err := engine.WriteDataAsHash(ctx, records); err != nil {
		return errors.Wrap(err, "write widgets")
	}
	if _, err := engine.BuildIndexes(ctx, widgetClass, records); err != nil {
		return errors.Wrap(err, "build indexes")
	}

	info, err := engine.Introspect(ctx, widgetClass)
	if err != nil {
		return err
	}
	plan := filters.Plan{
		filters.ScoreBetween("Price", 1.0, 5.0),
		filters.TextPrefix("Name", "wi"),
	}
	ids, err := engine.Search(ctx, widgetClass.Name, plan, filters.Intersect, info)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %v\n", plan, ids.IDs())
	for _, entry := range engine.DebugTrace() {
		fmt.Printf("  %s path=%s results=%d took=%s\n", entry.QueryID, entry.Path, entry.Results, entry.Duration)
	}
	return nil
}
