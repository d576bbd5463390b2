// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the result cache abstraction for llmbatch.
//
// Caching is optional. When a batcher is given a ResultCache it looks up
// each item before sending it and writes successful results back, so a
// rerun of a partially failed batch only pays for the items that failed.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the ResultCache
// interface:
//
//	cache, err := badger.NewResultCache(backend)  // returns storage.ResultCache
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/cache", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache, err := badger.NewResultCache(backend)
//	defer cache.Close()
//
// Use in tests with in-memory storage:
//
//	cache, backend, err := badger.NewMemoryCache()
//
// # Serialization
//
// Entries are encoded with MUS (github.com/mus-format/mus-go) through the
// helpers in serialization.go.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use; batchers call them
// from many goroutines at once.
package storage
