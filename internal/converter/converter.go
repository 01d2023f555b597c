package converter

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ppconvert/internal/model"
	"ppconvert/internal/parser"
)

// DefaultWorkers ConvertConcurrent 的默认并发数
const DefaultWorkers = 4

// Converter 行 → 作业记录转换器
//
// 主数据与历史在一次会话内只读；同一 Converter 可被多个 goroutine 共享。
type Converter struct {
	master  *model.MasterData
	history []model.HistoricalShipmentRecord
	logger  *zap.Logger
}

// New 创建转换器；master 为 nil 时视为空主数据，logger 为 nil 时不输出日志
func New(master *model.MasterData, history []model.HistoricalShipmentRecord, logger *zap.Logger) *Converter {
	if master == nil {
		master = &model.MasterData{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{master: master, history: history, logger: logger}
}

// ConvertRow 单行转换：主作业记录在前，护航记录随后；作业类型为空的记录被丢弃
func (c *Converter) ConvertRow(row model.RawScheduleRow, fileName string) []model.OperationRecord {
	primary, escorts := c.assemble(row, fileName)

	out := make([]model.OperationRecord, 0, 1+len(escorts))
	for _, rec := range append([]model.OperationRecord{primary}, escorts...) {
		if rec.Work.String() == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// assemble 构建过滤前的主记录与护航记录
func (c *Converter) assemble(row model.RawScheduleRow, fileName string) (model.OperationRecord, []model.OperationRecord) {
	shipCol := row.Get(model.ColumnShip)
	cargoCol := row.Get(model.ColumnCargo)
	boarding := row.Get(model.ColumnBoarding)
	landing := row.Get(model.ColumnLanding)
	routing := row.Get(model.ColumnRouting)
	remarks := row.Get(model.ColumnRemarks)

	base := c.baseRecord(row, fileName)
	isLNG := parser.IsLNGShip(shipCol, cargoCol, boarding, landing, routing, remarks)

	work := parser.ClassifyWork(boarding, landing)
	ppnp := parser.ExtractPPNP(work, boarding, landing)

	primary := base.Clone()
	primary.Work = work
	primary.Berth = parser.ResolveBerth(work, base.Port, boarding, landing, c.master.Berths)
	primary.PPNP = ppnp
	Tally(&primary, parser.FindTowingShipNames(row, c.master.MasterTowing), c.master.MasterTowing)

	groups := parser.ParseRouteNotice(routing, isLNG)
	groups = append(groups, parser.ParseAnnotations(boarding, landing, remarks)...)

	escorts := make([]model.OperationRecord, 0, len(groups))
	for _, g := range groups {
		rec := base.Clone()
		rec.Work = model.Resolved(model.WorkEscort)
		rec.Berth = EscortBerth(g.Route, c.master.EscortLocations, isLNG)
		rec.PPNP = ppnp
		Tally(&rec, g.Ships, c.master.MasterTowing)
		escorts = append(escorts, rec)
	}
	return primary, escorts
}

func (c *Converter) baseRecord(row model.RawScheduleRow, fileName string) model.OperationRecord {
	no := parser.ExtractNo(fileName)
	shipCol := row.Get(model.ColumnShip)
	shipName := parser.ExtractShipName(shipCol)

	dwt, ok := parser.ExtractDWT(row.Get(model.ColumnTonnage))
	dwtCell := model.Resolved(dwt)
	if !ok {
		dwtCell = model.Unresolved(parser.FirstLine(row.Get(model.ColumnTonnage)))
	}

	tally := make(map[string]int, len(model.TallyKeys))
	for _, k := range model.TallyKeys {
		tally[k] = 0
	}

	return model.OperationRecord{
		No:         model.Resolved(no),
		B:          model.Resolved(parser.ExtractB(row.Get(model.ColumnNo))),
		C:          model.Resolved(parser.ExtractC(fileName)),
		ShipName:   model.Resolved(shipName),
		Ovc:        parser.ResolveOperator(shipCol, c.master.OperatingVessels),
		Agent:      parser.ResolveAgent(shipCol, c.master.Agents),
		DWT:        dwtCell,
		Load:       ResolveCargo(row.Get(model.ColumnCargo), c.master.LoadedCargo, shipName, dwt, no, c.history),
		LoadDetail: model.Resolved(""),
		Port:       parser.ResolvePort(row.Get(model.ColumnBoarding), row.Get(model.ColumnLanding), c.master.Ports),
		Berth:      model.Unresolved(""),
		Work:       model.Unresolved(""),
		Tally:      tally,
		PPNP:       model.Unresolved(""),
	}
}

// Convert 批量转换：跳过船名列为空的行，按输入顺序展开
func (c *Converter) Convert(rows []model.RawScheduleRow, fileName string) []model.OperationRecord {
	var out []model.OperationRecord
	for i, row := range rows {
		if row.Get(model.ColumnShip) == "" {
			continue
		}
		recs := c.ConvertRow(row, fileName)
		c.logger.Debug("row converted", zap.Int("row", i), zap.Int("records", len(recs)))
		out = append(out, recs...)
	}
	return out
}

// ConvertConcurrent 与 Convert 结果一致，按行分发到有界 goroutine 池
func (c *Converter) ConvertConcurrent(ctx context.Context, rows []model.RawScheduleRow, fileName string, workers int) ([]model.OperationRecord, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([][]model.OperationRecord, len(rows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, row := range rows {
		if row.Get(model.ColumnShip) == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("convert row %d: %w", i, err)
			}
			results[i] = c.ConvertRow(row, fileName)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.OperationRecord
	for i, recs := range results {
		if recs == nil {
			continue
		}
		c.logger.Debug("row converted", zap.Int("row", i), zap.Int("records", len(recs)))
		out = append(out, recs...)
	}
	return out, nil
}
