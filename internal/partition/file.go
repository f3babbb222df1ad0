package partition

import (
	"go.uber.org/zap"

	"github.com/finch-db/finchdb/internal/partition/directiobackend"
	finchOptions "github.com/finch-db/finchdb/pkg/options"
)

// OpenFile creates (or opens, if it already exists and reuse is true) a
// growable, O_DIRECT-backed file Partition at opts.PartitionPath.
func OpenFile(opts finchOptions.Options, reuse bool, logger *zap.SugaredLogger) (*Partition, error) {
	var (
		dev *directiobackend.Device
		err error
		isNew bool
	)
	if reuse {
		dev, err = directiobackend.Open(opts.PartitionPath)
		if err != nil {
			dev, err = directiobackend.Create(opts.PartitionPath)
			isNew = true
		}
	} else {
		dev, err = directiobackend.Create(opts.PartitionPath)
		isNew = true
	}
	if err != nil {
		return nil, err
	}

	p := New(dev, Options{
		Growable:      true,
		GrowthPages:   uint32(opts.GrowthPages),
		DeleteOnClose: opts.DeleteOnClose,
		Logger:        logger,
	})
	p.Open()

	if isNew {
		initialPages := uint32(opts.GrowthPages) + 1
		if err := dev.Truncate(initialPages); err != nil {
			return nil, err
		}
		if err := p.Format(initialPages); err != nil {
			return nil, err
		}
	}
	return p, nil
}
