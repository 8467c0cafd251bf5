package cache

import (
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.TableType != TableSharded {
		t.Fatalf("Expected sharded table, got %s", opts.TableType)
	}

	if opts.Shards <= 0 {
		t.Fatal("Shards should be positive")
	}

	if opts.BatchSize != DefaultBatchSize {
		t.Fatalf("Expected batch size %d, got %d", DefaultBatchSize, opts.BatchSize)
	}

	if opts.ScanConcurrency <= 0 {
		t.Fatal("ScanConcurrency should be positive")
	}

	if opts.InternerType != InternerLFU {
		t.Fatalf("Expected lfu interner, got %s", opts.InternerType)
	}
}

func TestDefaultInternerConfig(t *testing.T) {
	config := DefaultInternerConfig()

	if config.NumCounters <= 0 {
		t.Fatal("NumCounters should be positive")
	}

	if config.MaxCost <= 0 {
		t.Fatal("MaxCost should be positive")
	}

	if config.BufferItems != 64 {
		t.Fatalf("Expected BufferItems to be 64, got %d", config.BufferItems)
	}

	if config.MaxSize <= 0 {
		t.Fatal("MaxSize should be positive")
	}
}

func TestOptionsValidate(t *testing.T) {
	modify := func(fn func(*Options)) Options {
		opts := DefaultOptions()
		fn(&opts)
		return opts
	}

	tests := []struct {
		name  string
		opts  Options
		valid bool
	}{
		{
			name:  "Valid options",
			opts:  DefaultOptions(),
			valid: true,
		},
		{
			name:  "Locked table",
			opts:  modify(func(o *Options) { o.TableType = TableLocked; o.Shards = 0 }),
			valid: true,
		},
		{
			name:  "Unknown table type",
			opts:  modify(func(o *Options) { o.TableType = "btree" }),
			valid: false,
		},
		{
			name:  "Zero shards",
			opts:  modify(func(o *Options) { o.Shards = 0 }),
			valid: false,
		},
		{
			name:  "Custom table factory ignores table type",
			opts:  modify(func(o *Options) { o.TableType = ""; o.TableFactory = NewLockedTableFactory() }),
			valid: true,
		},
		{
			name:  "Zero batch size",
			opts:  modify(func(o *Options) { o.BatchSize = 0 }),
			valid: false,
		},
		{
			name:  "Negative scan concurrency",
			opts:  modify(func(o *Options) { o.ScanConcurrency = -1 }),
			valid: false,
		},
		{
			name:  "Unknown interner",
			opts:  modify(func(o *Options) { o.InternerType = "arc" }),
			valid: false,
		},
		{
			name:  "LRU interner without size",
			opts:  modify(func(o *Options) { o.InternerType = InternerLRU; o.InternerConfig.MaxSize = 0 }),
			valid: false,
		},
		{
			name:  "LFU interner without cost",
			opts:  modify(func(o *Options) { o.InternerConfig.MaxCost = 0 }),
			valid: false,
		},
		{
			name:  "No interner",
			opts:  modify(func(o *Options) { o.InternerType = InternerNone; o.InternerConfig = InternerConfig{} }),
			valid: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.opts.Validate()
			if test.valid && err != nil {
				t.Fatalf("Expected valid options, got error: %v", err)
			}
			if !test.valid && err == nil {
				t.Fatal("Expected invalid options, got no error")
			}
		})
	}
}
