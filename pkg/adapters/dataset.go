package adapters

import (
	"github.com/google/uuid"

	"github.com/Amadeus750/spend-streamlet/pkg/models/api"
	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/models/store"
)

func MapStoreSnapshotToDomainDataset(snapshot store.DatasetSnapshot, stats *store.DatasetStats) domain.Dataset {
	id, _ := uuid.Parse(snapshot.SnapshotID)
	dataset := domain.Dataset{
		Name:        snapshot.Dataset,
		SourcePath:  snapshot.SourcePath,
		Format:      snapshot.Format,
		SnapshotID:  id,
		RowCount:    snapshot.RowCount,
		AttrColumns: snapshot.AttrColumns,
		LoadedAt:    snapshot.LoadedAt,
	}
	if stats != nil {
		dataset.FirstDate = stats.FirstDate
		dataset.LastDate = stats.LastDate
	}
	return dataset
}

func MapDatasetDomainToApi(dataset domain.Dataset) api.Dataset {
	return api.Dataset{
		Name:        dataset.Name,
		SourcePath:  dataset.SourcePath,
		Format:      dataset.Format,
		SnapshotID:  dataset.SnapshotID.String(),
		RowCount:    dataset.RowCount,
		FirstDate:   dataset.FirstDate,
		LastDate:    dataset.LastDate,
		AttrColumns: dataset.AttrColumns,
		Currency:    dataset.Currency,
		LoadedAt:    dataset.LoadedAt,
	}
}
