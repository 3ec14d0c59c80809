package config

import (
	"context"
	"encoding/json"
	"os"

	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/caseguard/riskmatrix/pkg/repository/firestore"
	"github.com/caseguard/riskmatrix/pkg/repository/memory"
	"github.com/caseguard/riskmatrix/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	projectID  string
	databaseID string
	prefix     string
	tagsFile   string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore or memory)",
			Category:    "Repository",
			Value:       "firestore",
			Sources:     cli.EnvVars("RISKMATRIX_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("RISKMATRIX_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("RISKMATRIX_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for the root Firestore collection",
			Category:    "Repository",
			Sources:     cli.EnvVars("RISKMATRIX_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.prefix,
		},
		&cli.StringFlag{
			Name:        "memory-tags-file",
			Usage:       "JSON file with case tags for the memory backend ({tenant: {case: [tags]}})",
			Category:    "Repository",
			Sources:     cli.EnvVars("RISKMATRIX_MEMORY_TAGS_FILE"),
			Destination: &r.tagsFile,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// Configure initializes a repository and the tag source of the same backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, interfaces.TagSource, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if r.prefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.prefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
			"collection_prefix", r.prefix,
		)
		return repo, repo.TagSource(), nil

	case "memory":
		tags := memory.NewTagSource()
		if r.tagsFile != "" {
			if err := loadMemoryTags(r.tagsFile, tags); err != nil {
				return nil, nil, err
			}
		}
		logging.Default().Info("Using in-memory repository (development mode)", "tags_file", r.tagsFile)
		return memory.New(), tags, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V("backend", r.backend))
	}
}

func loadMemoryTags(path string, dst *memory.TagSource) error {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read tags file", goerr.V(ConfigPathKey, path))
	}

	var tenants map[types.TenantID]map[types.CaseID][]model.Tag
	if err := json.Unmarshal(data, &tenants); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "failed to parse tags file", goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	for tenantID, cases := range tenants {
		for caseID, tags := range cases {
			dst.PutTags(tenantID, caseID, tags)
		}
	}
	return nil
}
