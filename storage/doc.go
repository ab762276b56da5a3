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


// Package storage provides the storage abstraction layer for enrichit.
//
// This package defines the interfaces that decouple persistence from the
// enrichment pipeline: the status repository that holds per-document
// timelines, the blob store that serves uploaded images and their metadata,
// and the chunk writer that persists normalized content records.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce abstraction:
//
//	repo, err := badger.NewStatusRepository(backend)  // returns storage.StatusRepository
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Implementations
//
//   - storage/badger: StatusRepository on BadgerDB, records encoded with mus-go
//   - storage/blob: filesystem BlobStore with signed URLs, and a filesystem ChunkWriter
//
// # Usage
//
//	backend, err := badger.OpenBackend("/var/lib/enrichit/status", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	repo, err := badger.NewStatusRepository(backend)
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryStatusRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
