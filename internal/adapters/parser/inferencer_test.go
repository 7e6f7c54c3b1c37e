package parser

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rsx/internal/adapters/logger"
	"go.trai.ch/rsx/internal/core/domain"
)

func infer(t *testing.T, src string) *domain.DependencySet {
	t.Helper()
	log := logger.NewWithWriter(io.Discard)
	unit, err := NewClassifier(log).Classify("test", []byte(src), false)
	require.NoError(t, err)
	deps, err := NewInferencer(log).Infer(unit)
	require.NoError(t, err)
	return deps
}

func TestInferUseDeclarations(t *testing.T) {
	src := `use serde::Serialize;
use serde_json::{Value, json};
use rand::prelude::*;

fn main() {}
`
	deps := infer(t, src)
	assert.Equal(t, []string{"serde", "serde_json", "rand"}, deps.Names())
}

func TestInferExcludesBuiltinsAndLocalModules(t *testing.T) {
	src := `use std::collections::HashMap;
use core::fmt;
use crate::helpers;
use self::inner;
use super::shared;
use helpers::run;
use regex::Regex;

mod helpers {
    pub fn run() {}
}

fn main() {}
`
	deps := infer(t, src)
	assert.Equal(t, []string{"regex"}, deps.Names())
}

func TestInferExternCrate(t *testing.T) {
	src := `extern crate serde;
extern crate serde_json as json;

fn main() {}
`
	deps := infer(t, src)
	require.Equal(t, []string{"serde", "serde_json"}, deps.Names())
	assert.Equal(t, "json", deps.All()[1].Rename.String())
}

func TestInferUseAsRename(t *testing.T) {
	deps := infer(t, "use serde_json as json;\n\nfn main() {}\n")
	all := deps.All()
	require.Len(t, all, 1)
	assert.Equal(t, "serde_json", all[0].Name.String())
	assert.Equal(t, "json", all[0].Rename.String())
}

func TestInferGroupedAndWildcardImports(t *testing.T) {
	src := `use {anyhow, thiserror};
use itertools::*;

fn main() {}
`
	deps := infer(t, src)
	assert.Equal(t, []string{"anyhow", "thiserror", "itertools"}, deps.Names())
}

func TestInferNestedScopes(t *testing.T) {
	src := `fn main() {
    use serde::Serialize;
    {
        use rand::Rng;
    }
    inner();
}

fn inner() {
    use regex::Regex;
}
`
	deps := infer(t, src)
	assert.Equal(t, []string{"serde", "rand", "regex"}, deps.Names())
}

func TestInferSameAliasDifferentCratesInSeparateScopes(t *testing.T) {
	src := `fn first() {
    use serde_json as j;
    let _ = j::json!({});
}

fn second() {
    use json5 as j;
    let _ = j::to_string(&1);
}

fn main() {}
`
	// The shared local alias must not collapse the two crates into one.
	deps := infer(t, src)
	assert.Equal(t, []string{"serde_json", "json5"}, deps.Names())
}

func TestInferFromFragment(t *testing.T) {
	// Headless code still yields its imports.
	src := `use chrono::Utc;
let now = Utc::now();
println!("{now}");`
	deps := infer(t, src)
	assert.Equal(t, []string{"chrono"}, deps.Names())
}

func TestInferNoDependencies(t *testing.T) {
	deps := infer(t, "fn main() { println!(\"hi\"); }\n")
	assert.Equal(t, 0, deps.Len())
}
