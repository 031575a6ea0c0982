package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository/memory"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

type recorder struct {
	order []string
	fail  string
}

type categorySink struct{ r *recorder }

func (s categorySink) Upsert(_ context.Context, c *domain.Category) error {
	s.r.order = append(s.r.order, "category:"+c.ID)
	return nil
}

type productSink struct{ r *recorder }

func (s productSink) Upsert(_ context.Context, p *domain.Product) error {
	if p.ID == s.r.fail {
		return errors.New("constraint violation")
	}
	s.r.order = append(s.r.order, "product:"+p.ID)
	return nil
}

func TestSeedCatalog_CategoriesFirst(t *testing.T) {
	data := memory.Seed(time.Now())
	r := &recorder{}

	require.NoError(t, seedCatalog(context.Background(), categorySink{r}, productSink{r}, data, logger.Discard()))

	require.Len(t, r.order, len(data.Categories)+len(data.Products))
	for i := range data.Categories {
		assert.Equal(t, "category:"+data.Categories[i].ID, r.order[i])
	}
	assert.Equal(t, "product:"+data.Products[0].ID, r.order[len(data.Categories)])
}

func TestSeedCatalog_StopsOnError(t *testing.T) {
	data := memory.Seed(time.Now())
	r := &recorder{fail: data.Products[1].ID}

	err := seedCatalog(context.Background(), categorySink{r}, productSink{r}, data, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), data.Products[1].Name)
	assert.Len(t, r.order, len(data.Categories)+1)
}
