package movement

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/transfer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("stores every row", func(t *testing.T) {
		f := newFixture(t)
		c := f.chemical(t, "硫酸")
		data := "化学品名称,数量,单位,供应商,入库时间\n" +
			"硫酸,10,kg,甲公司,2024-03-01 08:00:00\n" +
			"硫酸,２.５,,乙公司,\n"

		res, err := f.storage.Import(ctx, strings.NewReader(data), transfer.FormatCSV, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Equal(t, 2, res.Imported)
		assert.Empty(t, res.Errors)
		assert.True(t, decimal.RequireFromString("12.5").Equal(f.total(t, c.ID)))
	})

	t.Run("row errors store nothing", func(t *testing.T) {
		f := newFixture(t)
		c := f.chemical(t, "盐酸")
		data := "化学品名称,数量,入库时间\n" +
			"盐酸,10,\n" +
			"未知,5,\n" +
			"盐酸,abc,\n" +
			"盐酸,3,明天\n"

		res, err := f.storage.Import(ctx, strings.NewReader(data), transfer.FormatCSV, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Imported)
		require.Len(t, res.Errors, 3)
		assert.Equal(t, 3, res.Errors[0].Row)
		assert.Equal(t, colChemical, res.Errors[0].Column)
		assert.Equal(t, colAmount, res.Errors[1].Column)
		assert.Equal(t, colStorageTime, res.Errors[2].Column)
		requireAmount(t, 0, f.total(t, c.ID))
	})

	t.Run("missing columns", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.storage.Import(ctx, strings.NewReader("名称,数量\n硫酸,1\n"), transfer.FormatCSV, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestOutboundService_ImportChecksStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.chemical(t, "乙醇")
	f.storageIn(t, c.ID, 10)

	data := "化学品名称,数量,领用人\n乙醇,6,张三\n乙醇,6,李四\n"
	_, err := f.outbound.Import(ctx, strings.NewReader(data), transfer.FormatCSV, nil)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	requireAmount(t, 10, f.total(t, c.ID))
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, format := range []transfer.Format{transfer.FormatCSV, transfer.FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			src := newFixture(t)
			c := src.chemical(t, "丙酮")
			_, err := src.storage.Create(ctx, StorageRequest{ChemicalID: c.ID, Amount: kg(8), Supplier: "甲公司", BatchNo: "B1"})
			require.NoError(t, err)
			_, err = src.storage.Create(ctx, StorageRequest{ChemicalID: c.ID, Amount: kg(4), Supplier: "乙公司"})
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, src.storage.Export(ctx, &buf, format, ListQuery{}))

			dst := newFixture(t)
			d := dst.chemical(t, "丙酮")
			res, err := dst.storage.Import(ctx, &buf, format, nil)
			require.NoError(t, err)
			assert.Equal(t, 2, res.Imported)
			requireAmount(t, 12, dst.total(t, d.ID))

			page, err := dst.storage.List(ctx, ListQuery{Supplier: "甲"})
			require.NoError(t, err)
			require.Len(t, page.Records, 1)
			assert.Equal(t, "B1", page.Records[0].BatchNo)
		})
	}
}

func TestTemplate(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	require.NoError(t, f.outbound.Template(&buf, transfer.FormatCSV))

	table, err := transfer.Read(&buf, transfer.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, outboundSheet.headers, table.Headers)
	assert.Len(t, table.Rows, 1)
}
