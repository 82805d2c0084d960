package groupsort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheet-sync/internal/storage"
)

func keys(groups []*Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func ids(rows []RowEntry) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Values[0]
	}
	return out
}

func TestOrderGroups(t *testing.T) {
	// порядок на входе не важен
	inputs := [][]*Group{
		{
			{Key: "GROUP_5", HasSort: true, SortValue: 5},
			{Key: "UNASSIGNED"},
			{Key: "GROUP_2", HasSort: true, SortValue: 2},
		},
		{
			{Key: "UNASSIGNED"},
			{Key: "GROUP_2", HasSort: true, SortValue: 2},
			{Key: "GROUP_5", HasSort: true, SortValue: 5},
		},
	}

	for _, groups := range inputs {
		OrderGroups(groups)
		assert.Equal(t, []string{"GROUP_2", "GROUP_5", "UNASSIGNED"}, keys(groups))
	}

	mixed := []*Group{
		{Key: "UNASSIGNED"},
		{Key: "META_Б"},
		{Key: "GROUP_10", HasSort: true, SortValue: 10},
		{Key: "META_А"},
		{Key: "GROUP_9", HasSort: true, SortValue: 9},
	}
	OrderGroups(mixed)
	assert.Equal(t, []string{"GROUP_9", "GROUP_10", "META_А", "META_Б", "UNASSIGNED"}, keys(mixed))
}

func TestOrderByManufacturer_SameNameInsertion(t *testing.T) {
	rows := []RowEntry{
		{Values: []string{"B1"}, HasIDP: true, IDP: 1, DSName: "крем", Position: 0},
		{Values: []string{"B2"}, HasIDP: true, IDP: 2, DSName: "гель", Position: 1},
		{Values: []string{"B3"}, HasIDP: true, IDP: 3, DSName: "тоник", Position: 2},
		{Values: []string{"B4"}, DSName: "крем", Position: 3},
		{Values: []string{"B5"}, DSName: "мыло", Position: 4},
		{Values: []string{"B6"}, DSName: "крем", Position: 5},
		{Values: []string{"B7"}, Position: 6},
	}

	got := orderByManufacturer(rows)
	// B4 сразу за B1, B6 за последним "крем" (B4), остальные в конец
	assert.Equal(t, []string{"B1", "B4", "B6", "B2", "B3", "B5", "B7"}, ids(got))
}

func TestOrderByPrice(t *testing.T) {
	rows := []RowEntry{
		{Values: []string{"C1"}, Position: 0},
		{Values: []string{"C2"}, HasIDP: true, IDP: 5, Position: 1},
		{Values: []string{"C3"}, HasIDP: true, IDP: 0, Position: 2},
		{Values: []string{"C4"}, HasIDP: true, IDP: 5, Position: 3},
		{Values: []string{"C5"}, Position: 4},
	}

	assert.Equal(t, []string{"C3", "C2", "C4", "C1", "C5"}, ids(orderByPrice(rows)))
}

func TestArrange_SingleManufacturerGroup(t *testing.T) {
	primary := storage.NewSnapshot(storage.Sheet{Name: "Главная"}, [][]string{
		{"ID", "ID-G", "Группа"},
		{"A1", "1", "Бренд"},
		{"A2", "1", "Бренд"},
		{"A3", "1", "Бренд"},
	})
	target := storage.NewSnapshot(storage.Sheet{Name: "Заказ"}, [][]string{
		{"ID", "ID-P", "Name"},
		{"A1", "2", "x"},
		{"A2", "1", "y"},
		{"A3", "", "z"},
	})

	arr, err := Arrange(target, BuildGroupMaps(primary, nil, ByManufacturer), ByManufacturer)
	require.NoError(t, err)

	require.Len(t, arr.Groups, 1)
	assert.Equal(t, "GROUP_1", arr.Groups[0].Key)
	assert.Equal(t, []string{"A2", "A1", "A3"}, ids(arr.Groups[0].Rows))

	rows, headerRows := arr.Layout()
	assert.Equal(t, [][]string{
		{"Бренд", "", ""},
		{"A2", "1", "y"},
		{"A1", "2", "x"},
		{"A3", "", "z"},
	}, rows)
	assert.Equal(t, []int{2}, headerRows)
}

func TestArrange_MissingIDColumn(t *testing.T) {
	target := storage.NewSnapshot(storage.Sheet{Name: "Заказ"}, [][]string{{"Артикул"}, {"A1"}})

	_, err := Arrange(target, BuildGroupMaps(nil, nil, ByManufacturer), ByManufacturer)
	assert.ErrorIs(t, err, storage.ErrHeaderNotFound)
}

func TestBuildGroupMaps_FirstLineWins(t *testing.T) {
	price := storage.NewSnapshot(storage.Sheet{Name: "Прайс"}, [][]string{
		{"ID", "ID-L", "Группа линии", "Линия Прайс"},
		{"A1", "10", "Уход", "Базовая"},
		{"A2", "10.0", "Другое", "Другая"},
		{"A3", "abc", "", ""},
	})

	maps := BuildGroupMaps(nil, price, ByPrice)
	assert.Len(t, maps.IDToPrice, 3)
	assert.Equal(t, map[int]LineInfo{10: {GroupLine: "Уход", LinePrice: "Базовая"}}, maps.IDLToLine)

	// прайс нужен только для ценовых линий
	assert.Empty(t, BuildGroupMaps(nil, price, ByManufacturer).IDToPrice)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("byPrice")
	require.NoError(t, err)
	assert.Equal(t, ByPrice, m)
	assert.Equal(t, "#7f6000", m.Style().Background)

	_, err = ParseMode("byColor")
	assert.ErrorIs(t, err, ErrUnknownMode)
}
