package report

// carry copies src into dst when src is non-empty.
func carry(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// PrefillFieldInspection copies the carry-over fields of a work order into
// a field inspection. Empty work order values leave the target untouched.
func PrefillFieldInspection(dst *FieldInspection, src *WorkOrder) {
	if dst == nil || src == nil {
		return
	}
	carry(&dst.ExpedienteNova, src.ExpedienteNova)
	carry(&dst.Fecha, src.FechaInspeccion)
	carry(&dst.CodigoInspector, src.CodigoInspector)
	carry(&dst.PaisDestino, src.PaisDestino)
	carry(&dst.ReferenciaCliente, src.ExpedienteCliente)
	carry(&dst.NumeroContrato, src.NumeroContrato)
	carry(&dst.Exportador, src.Exportador)
	carry(&dst.PersonaContacto, src.PersonaContacto)
	carry(&dst.LugarInspeccion, src.LugarInspeccion)
	carry(&dst.Poblacion, src.Poblacion)
	carry(&dst.Provincia, src.Provincia)
	carry(&dst.HoraInicio, src.HoraInspeccion)
	carry(&dst.MercanciaDeclarada, src.DescripcionMercancia)
	carry(&dst.PuertoOrigen, src.PuertoAeropuertoOrigen)
	carry(&dst.PuertoDestino, src.PuertoAeropuertoDestino)
}

// PrefillFinalInspection copies the carry-over fields of a field
// inspection into the final report.
func PrefillFinalInspection(dst *FinalInspection, src *FieldInspection) {
	if dst == nil || src == nil {
		return
	}
	carry(&dst.ExpedienteNova, src.ExpedienteNova)
	carry(&dst.ExpedienteCliente, src.ReferenciaCliente)
	carry(&dst.FechaInspeccion, src.Fecha)
	carry(&dst.NumeroContrato, src.NumeroContrato)
	carry(&dst.NumeroContenedores, src.NumeroContenedor)
	carry(&dst.TipoContenedor, src.TipoContenedor)
	carry(&dst.NumeracionContenedores, src.NumeroContenedor)
	carry(&dst.PrecintosNova, src.PrecintoNova)
	carry(&dst.PrecintosNaviera, src.PrecintoNaviera)
	carry(&dst.VendedorEmpresa, src.Exportador)
	carry(&dst.VendedorContacto, src.PersonaContacto)
	carry(&dst.LugarInspeccion, src.LugarInspeccion)
}

// Prefill applies the carry-over rules from a source record into dst. The
// source must be the report type that precedes dst in the workflow.
func Prefill(dst, src InspectionRecord) bool {
	switch {
	case dst.Type == TypeFieldInspection && src.Type == TypeWorkOrder:
		PrefillFieldInspection(dst.FieldInspection, src.WorkOrder)
		return true
	case dst.Type == TypeFinalInspection && src.Type == TypeFieldInspection:
		PrefillFinalInspection(dst.FinalInspection, src.FieldInspection)
		return true
	}
	return false
}

// PrefillSource returns the report type dst is prefilled from.
func PrefillSource(dst ReportType) (ReportType, bool) {
	switch dst {
	case TypeFieldInspection:
		return TypeWorkOrder, true
	case TypeFinalInspection:
		return TypeFieldInspection, true
	}
	return "", false
}
